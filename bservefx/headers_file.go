package bservefx

import (
	"os"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// HeaderFile is the layout of the TOML file that BSERVE_HEADERS_FILE points to:
//
//	[headers]
//	Server = "bserve"
//	X-Frame-Options = "DENY"
type HeaderFile struct {
	Headers map[string]string `toml:"headers"`
}

// LoadHeaderFile reads and decodes a header file.
func LoadHeaderFile(path string) (HeaderFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return HeaderFile{}, errors.Wrap(err, "read header file")
	}

	var hf HeaderFile
	if err := toml.Unmarshal(b, &hf); err != nil {
		return HeaderFile{}, errors.Wrapf(err, "decode header file %q", path)
	}

	return hf, nil
}

// NewHeaderSet provides the header set shared by all instances, seeded from BSERVE_HEADERS_FILE
// when it is set.
func NewHeaderSet(env Environment) (*bserve.HeaderSet, error) {
	hs := bserve.NewHeaderSet()
	if env.headersFile() == "" {
		return hs, nil
	}

	hf, err := LoadHeaderFile(env.headersFile())
	if err != nil {
		return nil, err
	}

	for name, value := range hf.Headers {
		hs.Add(name, value)
	}

	return hs, nil
}
