package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
)

// Fingerprint returns a stable numeric identifier of cfg: the 32-bit
// FNV-1a hash of its canonical JSON form, in decimal. Map keys are
// sorted, so that equal configs built in a different order share
// the same fingerprint. Collisions are tolerated: the last resolved
// content wins.
func Fingerprint(cfg Config) string {
	h := fnv.New32a()
	_, _ = h.Write(canonical(cfg)) // fnv.Write never returns an error
	return strconv.FormatUint(uint64(h.Sum32()), 10)
}

// Ref returns the reference to a fingerprint, as written in href attributes.
func Ref(fp string) string { return "#" + fp }

func canonical(cfg Config) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding/json sorts map keys
	err := enc.Encode(map[string]any{"data": cfg.Data, "type": cfg.Type})
	if err != nil { // unsupported data, such as functions
		return []byte(fmt.Sprintf("%s:%#v", cfg.Type, cfg.Data))
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
