package pass

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	PassFile = "pass.json"

	// StripFile holds the QR raster
	StripFile = "strip.png"

	formatVersion = 1

	barcodeFormatQR        = "PKBarcodeFormatQR"
	barcodeMessageEncoding = "iso-8859-1"
)

// fixed color scheme
var (
	backgroundColor = rgb(60, 65, 76)
	foregroundColor = rgb(255, 255, 255)
	labelColor      = rgb(193, 200, 214)
)

func rgb(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

// Descriptor is the pass.json document.
type Descriptor struct {
	FormatVersion       int       `json:"formatVersion"`
	PassTypeIdentifier  string    `json:"passTypeIdentifier"`
	SerialNumber        string    `json:"serialNumber"`
	TeamIdentifier      string    `json:"teamIdentifier"`
	OrganizationName    string    `json:"organizationName"`
	Description         string    `json:"description"`
	LogoText            string    `json:"logoText,omitempty"`
	BackgroundColor     string    `json:"backgroundColor"`
	ForegroundColor     string    `json:"foregroundColor"`
	LabelColor          string    `json:"labelColor"`
	ExpirationDate      string    `json:"expirationDate"`
	WebServiceURL       string    `json:"webServiceURL,omitempty"`
	AuthenticationToken string    `json:"authenticationToken,omitempty"`
	Barcodes            []Barcode `json:"barcodes"`

	// Barcode is the pre-iOS 9 single barcode key
	Barcode Barcode `json:"barcode"`

	Generic  PassStructure     `json:"generic"`
	UserInfo map[string]string `json:"userInfo,omitempty"`
}

type Barcode struct {
	Message         string `json:"message"`
	Format          string `json:"format"`
	MessageEncoding string `json:"messageEncoding"`
	AltText         string `json:"altText,omitempty"`
}

// PassStructure holds the field groups of a generic pass.
type PassStructure struct {
	PrimaryFields   []Field `json:"primaryFields"`
	SecondaryFields []Field `json:"secondaryFields,omitempty"`
	AuxiliaryFields []Field `json:"auxiliaryFields,omitempty"`
	BackFields      []Field `json:"backFields,omitempty"`
}

type Field struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// SerialNumber returns the per-generation serial number {cardId}-{unix millis}.
func SerialNumber(cardID string, generatedAt time.Time) string {
	return fmt.Sprintf("%s-%d", cardID, generatedAt.UnixMilli())
}

// NewDescriptor populates a descriptor from validated input.
func NewDescriptor(cfg Config, in Input, generatedAt time.Time) Descriptor {
	barcode := Barcode{
		Message:         in.PublicCardURL,
		Format:          barcodeFormatQR,
		MessageEncoding: barcodeMessageEncoding,
		AltText:         "Scan to view my card",
	}

	back := []Field{
		{Key: "website", Label: "Digital Card", Value: in.PublicCardURL},
	}
	if cfg.SupportContact != "" {
		back = append(back, Field{Key: "support", Label: "Support", Value: cfg.SupportContact})
	}

	return Descriptor{
		FormatVersion:       formatVersion,
		PassTypeIdentifier:  cfg.PassTypeIdentifier,
		SerialNumber:        SerialNumber(in.CardID, generatedAt),
		TeamIdentifier:      cfg.TeamIdentifier,
		OrganizationName:    cfg.OrganizationName,
		Description:         cfg.Description,
		LogoText:            cfg.OrganizationName,
		BackgroundColor:     backgroundColor,
		ForegroundColor:     foregroundColor,
		LabelColor:          labelColor,
		ExpirationDate:      generatedAt.Add(cfg.validity()).UTC().Format(time.RFC3339),
		WebServiceURL:       cfg.WebServiceURL,
		AuthenticationToken: cfg.AuthenticationToken,
		Barcodes:            []Barcode{barcode},
		Barcode:             barcode,
		Generic: PassStructure{
			PrimaryFields:   []Field{{Key: "name", Label: "NAME", Value: in.Name}},
			SecondaryFields: []Field{{Key: "company", Label: "COMPANY", Value: in.Company}},
			AuxiliaryFields: []Field{{Key: "action", Label: "CONNECT", Value: "Scan to view my card"}},
			BackFields:      back,
		},
		UserInfo: map[string]string{
			"cardId": in.CardID,
			"userId": in.UserID,
		},
	}
}

// Marshal serializes the descriptor. The returned bytes are what gets hashed and archived.
func (d Descriptor) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, WrapIOError(err, "failed to serialize pass.json")
	}
	return data, nil
}

func parseDescriptor(data []byte) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Descriptor{}, WrapArchiveError(err, "pass.json is not valid JSON")
	}
	if d.SerialNumber == "" || d.PassTypeIdentifier == "" || d.TeamIdentifier == "" {
		return Descriptor{}, NewArchiveError("pass.json is missing serialNumber, passTypeIdentifier or teamIdentifier")
	}
	return d, nil
}
