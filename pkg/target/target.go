// Package target describes the output languages and frameworks a project can
// be generated for.
//
// Both enumerations are closed: the [Registry] is built once from the static
// tables and every framework belongs to exactly one language. Passing a
// framework together with a language it does not belong to is a caller
// contract violation and is reported as an INVALID_TARGET error by
// [Registry.Check].
package target

import (
	"slices"

	errs "github.com/matzehuels/stackforge/pkg/errors"
)

// Language identifies a target output language.
type Language string

// Framework identifies a target framework.
type Framework string

// Languages shipped in the default tables.
const (
	Java       Language = "java"
	Kotlin     Language = "kotlin"
	Python     Language = "python"
	TypeScript Language = "typescript"
	PHP        Language = "php"
	Go         Language = "go"
	Rust       Language = "rust"
	CSharp     Language = "csharp"
)

// Frameworks shipped in the default tables.
const (
	SpringBoot       Framework = "spring-boot"
	Quarkus          Framework = "quarkus"
	Micronaut        Framework = "micronaut"
	SpringBootKotlin Framework = "spring-boot-kotlin"
	Ktor             Framework = "ktor"
	Django           Framework = "django"
	FastAPI          Framework = "fastapi"
	Flask            Framework = "flask"
	NestJS           Framework = "nestjs"
	Express          Framework = "express"
	Laravel          Framework = "laravel"
	Symfony          Framework = "symfony"
	Gin              Framework = "gin"
	Echo             Framework = "echo"
	Fiber            Framework = "fiber"
	ActixWeb         Framework = "actix-web"
	Axum             Framework = "axum"
	ASPNETCore       Framework = "aspnetcore"
)

// LanguageInfo describes a language entry of the registry.
type LanguageInfo struct {
	Name  Language
	Label string
}

// FrameworkInfo describes a framework entry of the registry.
type FrameworkInfo struct {
	Name     Framework
	Label    string
	Language Language
}

// Registry is the immutable language/framework table.
// The zero value is not usable - use [NewRegistry].
type Registry struct {
	languages  []LanguageInfo
	frameworks []FrameworkInfo
	langIndex  map[Language]int
	fwIndex    map[Framework]int
	byLanguage map[Language][]Framework
}

// NewRegistry builds a registry from the given declarations, keeping their
// order. The first framework listed for a language is its default.
//
// It fails when identifiers are malformed or duplicated, when a framework
// refers to an undeclared language, or when a language has no framework.
func NewRegistry(languages []LanguageInfo, frameworks []FrameworkInfo) (*Registry, error) {
	r := &Registry{
		langIndex:  make(map[Language]int, len(languages)),
		fwIndex:    make(map[Framework]int, len(frameworks)),
		byLanguage: make(map[Language][]Framework, len(languages)),
	}
	for _, l := range languages {
		if err := errs.ValidateTargetKey(string(l.Name)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidLanguage, err, "language %q", l.Name)
		}
		if _, dup := r.langIndex[l.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidLanguage, "duplicate language %q", l.Name)
		}
		if l.Label == "" {
			l.Label = string(l.Name)
		}
		r.langIndex[l.Name] = len(r.languages)
		r.languages = append(r.languages, l)
	}
	for _, f := range frameworks {
		if err := errs.ValidateTargetKey(string(f.Name)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFramework, err, "framework %q", f.Name)
		}
		if _, dup := r.fwIndex[f.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidFramework, "duplicate framework %q", f.Name)
		}
		if _, ok := r.langIndex[f.Language]; !ok {
			return nil, errs.New(errs.ErrCodeInvalidFramework, "framework %q refers to unknown language %q", f.Name, f.Language)
		}
		if f.Label == "" {
			f.Label = string(f.Name)
		}
		r.fwIndex[f.Name] = len(r.frameworks)
		r.frameworks = append(r.frameworks, f)
		r.byLanguage[f.Language] = append(r.byLanguage[f.Language], f.Name)
	}
	for _, l := range r.languages {
		if len(r.byLanguage[l.Name]) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidLanguage, "language %q declares no framework", l.Name)
		}
	}
	return r, nil
}

// Languages returns every language in declaration order.
func (r *Registry) Languages() []LanguageInfo { return slices.Clone(r.languages) }

// AllFrameworks returns every framework in declaration order.
func (r *Registry) AllFrameworks() []FrameworkInfo { return slices.Clone(r.frameworks) }

// Frameworks returns the frameworks of lang in declaration order, or nil
// when lang is unknown.
func (r *Registry) Frameworks(lang Language) []Framework {
	return slices.Clone(r.byLanguage[lang])
}

// HasLanguage reports whether lang is declared.
func (r *Registry) HasLanguage(lang Language) bool {
	_, ok := r.langIndex[lang]
	return ok
}

// Language returns the description of lang.
func (r *Registry) Language(lang Language) (LanguageInfo, bool) {
	i, ok := r.langIndex[lang]
	if !ok {
		return LanguageInfo{}, false
	}
	return r.languages[i], true
}

// Framework returns the description of fw.
func (r *Registry) Framework(fw Framework) (FrameworkInfo, bool) {
	i, ok := r.fwIndex[fw]
	if !ok {
		return FrameworkInfo{}, false
	}
	return r.frameworks[i], true
}

// LanguageOf returns the language fw belongs to.
func (r *Registry) LanguageOf(fw Framework) (Language, bool) {
	info, ok := r.Framework(fw)
	return info.Language, ok
}

// DefaultFramework returns the first framework declared for lang.
func (r *Registry) DefaultFramework(lang Language) (Framework, bool) {
	fws := r.byLanguage[lang]
	if len(fws) == 0 {
		return "", false
	}
	return fws[0], true
}

// Check verifies that lang and fw are declared and that fw belongs to lang.
func (r *Registry) Check(lang Language, fw Framework) error {
	if !r.HasLanguage(lang) {
		return errs.New(errs.ErrCodeInvalidLanguage, "unknown language %q", lang)
	}
	owner, ok := r.LanguageOf(fw)
	if !ok {
		return errs.New(errs.ErrCodeInvalidFramework, "unknown framework %q", fw)
	}
	if owner != lang {
		return errs.New(errs.ErrCodeInvalidTarget, "framework %q belongs to %q, not %q", fw, owner, lang)
	}
	return nil
}
