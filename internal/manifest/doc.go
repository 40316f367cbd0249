// Package manifest loads and resolves build manifests. A manifest describes
// how one third-party library is fetched and configured by an external build
// orchestrator: where its source lives, which builder drives it, what it
// depends on, and which build defines it needs.
//
// # Manifest Format
//
// Manifests are sectioned key/value text. Sections may carry a condition
// after the section name; conditional sections only apply when the
// condition matches the resolution target:
//
//	[manifest]
//	name = folly
//
//	[git]
//	repo_url = https://github.com/facebook/folly.git
//
//	[build]
//	builder = cmake
//	job_weight_mib = 1024
//
//	[dependencies]
//	gflags
//	glog
//
//	[dependencies.os=darwin]
//	openssl
//
//	[cmake.defines]
//	BUILD_SHARED_LIBS = OFF
//
//	[cmake.defines.test=on]
//	BUILD_TESTS = ON
//
// Conditions are either a single comparison (os=linux) or a combination
// built with all(...), any(...) and not(...).
//
// # Usage
//
//	loader := manifest.NewLoader(manifest.LoaderOptions{
//	    Source: manifest.NewDirSource("./manifests"),
//	})
//	m, err := loader.LoadResolved(ctx, "folly", manifest.NewContext("linux", false))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, dep := range m.Dependencies {
//	    // ...
//	}
//
// Resolution order is fixed: base sections first, then matching conditional
// sections that do not test the "test" variable, then matching sections that
// do. Within each pass sections apply in file order and later keys win.
//
// # Error Handling
//
// Parse failures are returned as *ParseError, carrying the line number and
// text, and wrap one of the sentinel errors:
//   - ErrMalformedHeader: section header cannot be parsed
//   - ErrUnknownSection: section name is not part of the schema
//   - ErrInvalidCondition: header condition is not a valid expression
//   - ErrMalformedLine: entry line is not "key = value" or sits outside a section
//   - ErrDuplicateKey: key repeated within one section
//   - ErrDuplicateSection: section header repeated
//   - ErrUnknownField: field not allowed in the section
//   - ErrInvalidValue: field value has the wrong type
//   - ErrMissingField: required field is absent
package manifest
