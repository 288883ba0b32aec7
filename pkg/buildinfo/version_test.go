package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplateMentionsVersion(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if !strings.Contains(Template(), "v9.9.9") || !strings.Contains(String(), "v9.9.9") {
		t.Errorf("version missing from Template() = %q", Template())
	}
	if Generator() != "stackforge/v9.9.9" {
		t.Errorf("Generator() = %q", Generator())
	}
}
