package db

import (
	"strings"
	"testing"
)

func TestSchemaUniqueConstraints(t *testing.T) {
	for _, want := range []string{
		"UNIQUE (pauta_id, eleitor_id)",
		"UNIQUE (assembleia_id, eleitor_id)",
		"REFERENCES pautas (id) ON DELETE CASCADE",
	} {
		if !strings.Contains(Schema, want) {
			t.Errorf("schema sem %q", want)
		}
	}
}
