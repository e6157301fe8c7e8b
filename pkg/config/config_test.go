package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/trackview/pkg/errors"
)

const sample = `
[browser]
width = 1200
pixel_ratio = 2
resize_debounce = "250ms"

[session]
sample = "S1"
chromosome = "7"
start = 100
end = 5_000_000

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"

[source]
kind = "mongo"
mongo_uri = "mongodb://localhost:27017"

[[track]]
id = "cov"
kind = "dot"
y_domain = [-2.0, 2.0]

[[track]]
id = "clinvar"
kind = "band"
data = "annotation"
source_id = "clinvar"
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if c.Browser.Width != 1200 || c.Browser.PixelRatio != 2 || c.Browser.ResizeDebounce != 250*time.Millisecond {
		t.Errorf("browser = %+v", c.Browser)
	}
	if c.Session.Chromosome != "7" || c.Session.End != 5_000_000 {
		t.Errorf("session = %+v", c.Session)
	}
	if c.Cache.TTL != time.Hour || c.Cache.Backend != CacheRedis {
		t.Errorf("cache = %+v", c.Cache)
	}
	if c.Source.Database != DefaultDatabase {
		t.Errorf("database default = %q", c.Source.Database)
	}

	cov, ok := c.Track("cov")
	if !ok {
		t.Fatal("track cov missing")
	}
	if cov.Data != DataCoverage || cov.Label != "cov" {
		t.Errorf("cov defaults = %+v", cov)
	}
}

func TestParseErrors(t *testing.T) {
	base := `
[source]
dir = "data"
`
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"unknown key", base + "[browser]\nwidht = 3\n[[track]]\nid = \"a\"\nkind = \"dot\"\n", "unknown keys"},
		{"no tracks", base, "at least one"},
		{"bad kind", base + "[[track]]\nid = \"a\"\nkind = \"pie\"\n", "kind"},
		{"bad data", base + "[[track]]\nid = \"a\"\nkind = \"dot\"\ndata = \"transcript\"\n", "not valid for dot"},
		{"duplicate ids", base + "[[track]]\nid = \"a\"\nkind = \"dot\"\n[[track]]\nid = \"a\"\nkind = \"ideogram\"\n", "duplicate"},
		{"annotation without source", base + "[[track]]\nid = \"a\"\nkind = \"band\"\ndata = \"annotation\"\n", "source_id"},
		{"bad y domain", base + "[[track]]\nid = \"a\"\nkind = \"dot\"\ny_domain = [1.0, 0.0]\n", "y_domain"},
		{"inverted range", base + "[session]\nstart = 10\nend = 5\n[[track]]\nid = \"a\"\nkind = \"dot\"\n", "session range"},
		{"redis without addr", base + "[cache]\nbackend = \"redis\"\n[[track]]\nid = \"a\"\nkind = \"dot\"\n", "redis_addr"},
		{"http without url", "[source]\nkind = \"http\"\n[[track]]\nid = \"a\"\nkind = \"dot\"\n", "source.url"},
		{"bad source kind", "[source]\nkind = \"ftp\"\n[[track]]\nid = \"a\"\nkind = \"dot\"\n", "file, http or mongo"},
		{"syntax", "[[track", "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	c := Default("data")
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	before := *c
	c.SetDefaults()
	if c.Browser != before.Browser || c.Cache != before.Cache {
		t.Error("SetDefaults is not idempotent")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackview.toml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path + ".missing"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing file err = %v", err)
	}
}
