package binary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	toml "github.com/pelletier/go-toml/v2"
)

// ReceiptFile is the name of the receipt written into every install directory.
const ReceiptFile = ".leakguard-install.toml"

// WriteReceipt stores r in dir.
func WriteReceipt(dir string, r Receipt) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ReceiptFile), data, 0644); err != nil {
		return fmt.Errorf("%w: write receipt: %w", ErrFilesystem, err)
	}
	return nil
}

// ReadReceipt loads the receipt from dir. A missing receipt returns an error
// satisfying os.IsNotExist.
func ReadReceipt(dir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReceiptFile))
	if err != nil {
		return nil, err
	}

	var r Receipt
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &r, nil
}

// IsCurrent reports whether the receipt records the pinned version.
// Unparseable versions are never current.
func (r *Receipt) IsCurrent() bool {
	v, err := semver.NewVersion(r.Version)
	if err != nil {
		return false
	}
	return r.Tool == Tool && v.Equal(pinnedVersion)
}
