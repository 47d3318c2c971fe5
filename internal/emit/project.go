package emit

import (
	"gqlbundle/internal/document"
)

// Project is the set of TypeScript sources handed to the type checker,
// keyed by file name.
type Project map[string][]byte

// Sources renders the identifier-dependent sources (manifest and lazy
// index). The check command regenerates exactly these.
func Sources(compiled []document.Compiled) (Project, error) {
	ids := make([]string, len(compiled))
	for i, c := range compiled {
		ids[i] = c.ID
	}
	man, err := ManifestModule(ids)
	if err != nil {
		return nil, err
	}
	idx, err := IndexModule(Entries(compiled))
	if err != nil {
		return nil, err
	}
	return Project{ManifestFile: man, IndexFile: idx}, nil
}

// Full renders the complete project: Sources plus the synthesized types,
// the shim and the compiler configuration.
func Full(compiled []document.Compiled, types []byte, outDir string) (Project, error) {
	p, err := Sources(compiled)
	if err != nil {
		return nil, err
	}
	p[TypesFile] = types
	p[ShimFile] = Shim()
	p[TSConfigFile] = TSConfig(outDir)
	return p, nil
}
