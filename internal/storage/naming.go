package storage

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/yoorecord/internal/utils"
)

const (
	BlobPrefix    = "uploaded_"
	BlobExt       = ".wav"
	AudioMIMEType = "audio/wav"

	stampLayout = "20060102_150405"
)

// BlobName renders the canonical name for ts. seq > 1 appends a collision
// suffix that keeps names sortable within the same second.
func BlobName(ts time.Time, seq int) string {
	name := BlobPrefix + ts.Format(stampLayout)
	if seq > 1 {
		name += "_" + strconv.Itoa(seq)
	}
	return name + BlobExt
}

// ParseBlobName is the inverse of BlobName. It returns nil for names that
// do not follow the scheme.
func ParseBlobName(name string) *time.Time {
	if !strings.HasPrefix(name, BlobPrefix) || !strings.HasSuffix(name, BlobExt) {
		return nil
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, BlobPrefix), BlobExt)
	if len(stamp) < len(stampLayout) {
		return nil
	}
	if rest := stamp[len(stampLayout):]; rest != "" {
		digits, ok := strings.CutPrefix(rest, "_")
		n, err := strconv.Atoi(digits)
		if !ok || err != nil || n < 2 || strconv.Itoa(n) != digits {
			return nil
		}
		stamp = stamp[:len(stampLayout)]
	}
	ts, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return nil
	}
	return &ts
}

// BaseName strips the extension; transcripts are keyed by it.
func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// ValidateName rejects anything that is not a plain file name.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return utils.ErrInvalidName
	case strings.ContainsAny(name, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", utils.ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains a parent segment", utils.ErrInvalidName, name)
	case filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", utils.ErrInvalidName, name)
	}
	return nil
}
