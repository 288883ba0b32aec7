package target

import (
	"slices"
	"testing"

	errs "github.com/matzehuels/stackforge/pkg/errors"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(
		[]LanguageInfo{{Name: Rust, Label: "Rust"}, {Name: Go}},
		[]FrameworkInfo{
			{Name: ActixWeb, Language: Rust},
			{Name: Axum, Label: "Axum", Language: Rust},
			{Name: Gin, Language: Go},
		},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	return r
}

func TestRegistryLookups(t *testing.T) {
	r := testRegistry(t)

	if got := r.Frameworks(Rust); !slices.Equal(got, []Framework{ActixWeb, Axum}) {
		t.Errorf("Frameworks(rust) = %v", got)
	}
	if got := r.Frameworks(Java); got != nil {
		t.Errorf("Frameworks(java) = %v, want nil", got)
	}
	if fw, ok := r.DefaultFramework(Rust); !ok || fw != ActixWeb {
		t.Errorf("DefaultFramework(rust) = %q, %v", fw, ok)
	}
	if lang, ok := r.LanguageOf(Gin); !ok || lang != Go {
		t.Errorf("LanguageOf(gin) = %q, %v", lang, ok)
	}
	if info, _ := r.Language(Go); info.Label != "go" {
		t.Errorf("default label = %q, want go", info.Label)
	}
	if len(r.Languages()) != 2 || len(r.AllFrameworks()) != 3 {
		t.Errorf("unexpected sizes: %d languages, %d frameworks", len(r.Languages()), len(r.AllFrameworks()))
	}
}

func TestRegistryCheck(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name string
		lang Language
		fw   Framework
		code errs.Code
	}{
		{"valid", Rust, Axum, ""},
		{"unknown language", Java, SpringBoot, errs.ErrCodeInvalidLanguage},
		{"unknown framework", Rust, "rocket", errs.ErrCodeInvalidFramework},
		{"mismatch", Go, Axum, errs.ErrCodeInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Check(tt.lang, tt.fw)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("Check(%q, %q) code = %q, want %q (err=%v)", tt.lang, tt.fw, got, tt.code, err)
			}
		})
	}
}

func TestNewRegistryErrors(t *testing.T) {
	tests := []struct {
		name       string
		languages  []LanguageInfo
		frameworks []FrameworkInfo
		code       errs.Code
	}{
		{
			name:      "duplicate language",
			languages: []LanguageInfo{{Name: Go}, {Name: Go}},
			code:      errs.ErrCodeInvalidLanguage,
		},
		{
			name:      "malformed language",
			languages: []LanguageInfo{{Name: "Go Lang"}},
			code:      errs.ErrCodeInvalidLanguage,
		},
		{
			name:       "framework of unknown language",
			languages:  []LanguageInfo{{Name: Go}},
			frameworks: []FrameworkInfo{{Name: Gin, Language: Go}, {Name: Axum, Language: Rust}},
			code:       errs.ErrCodeInvalidFramework,
		},
		{
			name:       "duplicate framework",
			languages:  []LanguageInfo{{Name: Go}},
			frameworks: []FrameworkInfo{{Name: Gin, Language: Go}, {Name: Gin, Language: Go}},
			code:       errs.ErrCodeInvalidFramework,
		},
		{
			name:       "language without framework",
			languages:  []LanguageInfo{{Name: Go}, {Name: Rust}},
			frameworks: []FrameworkInfo{{Name: Gin, Language: Go}},
			code:       errs.ErrCodeInvalidLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.languages, tt.frameworks)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("NewRegistry() code = %q, want %q (err=%v)", got, tt.code, err)
			}
		})
	}
}
