package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	info := Get()
	if info.Version != "v1.2.3" || info.Commit != Commit || info.Date != Date {
		t.Errorf("Get() = %+v", info)
	}
	if !strings.Contains(info.String(), "version: v1.2.3") {
		t.Errorf("String() = %q", info.String())
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} ") {
		t.Errorf("Template() = %q, should start with the command name", tmpl)
	}
	if !strings.Contains(tmpl, "commit: "+Commit) {
		t.Errorf("Template() = %q, should include the commit", tmpl)
	}
}
