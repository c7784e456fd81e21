// Package storage supplies the decode collaborator: anything that can
// turn a file path into a resident Volume with its voxel spacing. The
// extraction engine itself never touches the filesystem beyond this
// boundary, so NIfTI/DICOM readers plug in behind the same interface.
package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	apperrors "go-radiomics-extractor/internal/errors"
	"go-radiomics-extractor/internal/volume"
)

// VolumeDecoder decodes a volume container into a resident Volume.
type VolumeDecoder interface {
	Decode(path string) (*volume.Volume, error)
}

// rawMagic identifies the raw volume container: "RVOL", little-endian
// int32 dims (nx, ny, nz), float64 spacing (x, y, z), then nx*ny*nz
// float64 intensities in z-major order.
var rawMagic = [4]byte{'R', 'V', 'O', 'L'}

// maxRawDim bounds each dimension so a corrupt header cannot trigger a
// giant allocation.
const maxRawDim = 4096

type rawHeader struct {
	Magic    [4]byte
	NX       int32
	NY       int32
	NZ       int32
	SpacingX float64
	SpacingY float64
	SpacingZ float64
}

// RawVolumeDecoder reads the raw volume container from the local
// filesystem.
type RawVolumeDecoder struct{}

// NewRawVolumeDecoder creates a decoder for the raw volume format
func NewRawVolumeDecoder() *RawVolumeDecoder {
	return &RawVolumeDecoder{}
}

// Decode reads and validates a raw volume file. Any malformed container
// fails with a decode error that is fatal for that file only.
func (d *RawVolumeDecoder) Decode(path string) (*volume.Volume, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to open volume file", err)
	}
	defer file.Close()

	var header rawHeader
	if err := binary.Read(file, binary.LittleEndian, &header); err != nil {
		return nil, apperrors.NewDecodeError("failed to read volume header", err)
	}
	if header.Magic != rawMagic {
		return nil, apperrors.NewDecodeError(fmt.Sprintf("bad magic %q", header.Magic), nil)
	}
	if header.NX < 1 || header.NY < 1 || header.NZ < 1 ||
		header.NX > maxRawDim || header.NY > maxRawDim || header.NZ > maxRawDim {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("invalid dimensions %dx%dx%d", header.NX, header.NY, header.NZ), nil)
	}
	if header.SpacingX <= 0 || header.SpacingY <= 0 || header.SpacingZ <= 0 {
		return nil, apperrors.NewDecodeError(
			fmt.Sprintf("invalid spacing (%g, %g, %g)", header.SpacingX, header.SpacingY, header.SpacingZ), nil)
	}

	vol := volume.New(int(header.NX), int(header.NY), int(header.NZ), volume.Spacing{
		X: header.SpacingX,
		Y: header.SpacingY,
		Z: header.SpacingZ,
	})
	if err := binary.Read(file, binary.LittleEndian, vol.Data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, apperrors.NewDecodeError("truncated volume data", err)
		}
		return nil, apperrors.NewDecodeError("failed to read volume data", err)
	}
	return vol, nil
}

// WriteRaw serializes a volume into the raw container format. Used by the
// CLI for sample data and by tests.
func WriteRaw(path string, vol *volume.Volume) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create volume file: %w", err)
	}
	defer file.Close()

	header := rawHeader{
		Magic:    rawMagic,
		NX:       int32(vol.NX),
		NY:       int32(vol.NY),
		NZ:       int32(vol.NZ),
		SpacingX: vol.Spacing.X,
		SpacingY: vol.Spacing.Y,
		SpacingZ: vol.Spacing.Z,
	}
	if err := binary.Write(file, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write volume header: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, vol.Data); err != nil {
		return fmt.Errorf("failed to write volume data: %w", err)
	}
	return nil
}
