package hdreason

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// LoadCoreOptions configures loadCore (spec.md §6).
type LoadCoreOptions struct {
	CorePath     string // directory or single file; defaults to "core" if empty
	IncludeIndex bool   // also load "<CorePath>/_index.hd" after the core file itself
	Validate     bool   // additionally compile/validate "<CorePath>/theory.json" as TheoryConstraints
}

// LoadCoreResult is loadCore's return value (spec.md §6).
type LoadCoreResult struct {
	Success bool
	Errors  []string
}

// corePackVersion matches a leading "// hdreason-core: vX.Y.Z" header line, the
// convention holomush uses to version plugin manifests (here applied to
// theory/core packs instead of plugin.yaml).
var corePackVersion = regexp.MustCompile(`^//\s*hdreason-core:\s*(\S+)`)

// LoadCore loads a theory/core pack: a DSL file, or every .hd file in a
// directory other than _index.hd, learning each into the session the same
// way `@_ Load` does (spec.md §6). A file may open with a
// "// hdreason-core: vX.Y.Z" header; a file whose declared version the
// session's CoreVersionConstraint rejects is not learned and its error is
// reported, while the pack's other files are still loaded.
func (s *Session) LoadCore(opts LoadCoreOptions) LoadCoreResult {
	path := opts.CorePath
	if path == "" {
		path = "core"
	}

	info, err := os.Stat(path)
	if err != nil {
		return LoadCoreResult{Errors: []string{err.Error()}}
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return LoadCoreResult{Errors: []string{err.Error()}}
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".hd") && e.Name() != "_index.hd" {
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	} else {
		files = []string{path}
	}

	if opts.Validate {
		if err := s.validateTheoryJSON(filepath.Join(path, "theory.json")); err != nil {
			return LoadCoreResult{Errors: []string{err.Error()}}
		}
	}

	var errs []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		if err := s.checkCoreVersion(data); err != nil {
			errs = append(errs, f+": "+err.Error())
			continue
		}
		res := s.Learn(string(data))
		if !res.Success {
			errs = append(errs, res.Errors...)
		}
	}

	if opts.IncludeIndex {
		indexPath := filepath.Join(path, "_index.hd")
		if data, err := os.ReadFile(indexPath); err == nil {
			if res := s.Learn(string(data)); !res.Success {
				errs = append(errs, res.Errors...)
			}
		}
	}

	return LoadCoreResult{Success: len(errs) == 0, Errors: errs}
}

// checkCoreVersion extracts a "// hdreason-core: vX.Y.Z" header from data's
// first line and checks it against the session's configured constraint; a
// core pack with no header or an unparseable version is accepted (the
// constraint only ever rejects a declared-but-incompatible version).
func (s *Session) checkCoreVersion(data []byte) error {
	if s.cfg.CoreVersionConstraint == "" {
		return nil
	}
	firstLine := string(data)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	m := corePackVersion.FindStringSubmatch(strings.TrimSpace(firstLine))
	if m == nil {
		return nil
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return nil
	}
	c, err := semver.NewConstraint(s.cfg.CoreVersionConstraint)
	if err != nil {
		return newExecutionError("InvalidArgument", "invalid coreVersionConstraint: "+err.Error())
	}
	if !c.Check(v) {
		return newExecutionError("InvalidArgument", "core pack version "+v.String()+" does not satisfy "+s.cfg.CoreVersionConstraint)
	}
	return nil
}
