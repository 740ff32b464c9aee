package pass

import (
	"embed"
	"fmt"
)

// bundled icon rasters: icon.png 29x29, icon@2x.png 58x58, icon@3x.png 87x87
//
//go:embed assets/icon.png assets/icon@2x.png assets/icon@3x.png
var assetFS embed.FS

const (
	IconFile   = "icon.png"
	Icon2xFile = "icon@2x.png"
	Icon3xFile = "icon@3x.png"
)

// iconSizes maps each bundled icon to its required pixel size
var iconSizes = map[string]int{
	IconFile:   29,
	Icon2xFile: 58,
	Icon3xFile: 87,
}

// iconFiles lists the bundled icons in archive order
var iconFiles = []string{IconFile, Icon2xFile, Icon3xFile}

func readIcon(name string) ([]byte, error) {
	data, err := assetFS.ReadFile("assets/" + name)
	if err != nil {
		return nil, WrapIOError(err, fmt.Sprintf("failed to read bundled icon %s", name))
	}
	return data, nil
}
