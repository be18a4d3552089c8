package flclient

import (
	"fmt"
	"strings"
)

// RDF namespaces of the FitLayout ontologies.
const (
	R    = "http://fitlayout.github.io/resource/"
	BOX  = "http://fitlayout.github.io/ontology/render.owl#"
	SEGM = "http://fitlayout.github.io/ontology/segmentation.owl#"
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
)

// DefaultPrefixString returns the SPARQL prefix declarations assumed by all
// queries the client generates.
func DefaultPrefixString() string {
	return fmt.Sprintf(`PREFIX rdf: <%s>
PREFIX rdfs: <%s>
PREFIX r: <%s>
PREFIX box: <%s>
PREFIX segm: <%s>
`, RDF, RDFS, R, BOX, SEGM)
}

// typeRef formats an artifact type for use in a SPARQL query. Full IRIs are
// wrapped in angle brackets; anything else is taken as a prefixed name.
func typeRef(artifactType string) string {
	if strings.Contains(artifactType, "://") {
		return "<" + artifactType + ">"
	}
	return artifactType
}
