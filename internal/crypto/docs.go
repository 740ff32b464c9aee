// crypto package provides the signing primitives used to build Apple Wallet passes.
//
// these are low level functions - manifest hashing, key and certificate loading, and detached PKCS#7 signing.
// See the pass package for the high level packaging pipeline.
package crypto
