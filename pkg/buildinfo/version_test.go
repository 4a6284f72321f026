package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgentCarriesVersion(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	ua := UserAgent()
	if !strings.HasPrefix(ua, "stargraph/v1.2.3 ") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(Template(), "v1.2.3") || !strings.Contains(String(), "v1.2.3") {
		t.Error("templates should include the version")
	}
}
