package api

// GmodPack is the published node/relation table for one standard version.
// It is the flat form the resource layer hands to the tree builder.
type GmodPack struct {
	// VisVersion is the canonical version string, e.g. "3-7a".
	VisVersion string `json:"visRelease"`
	// Items lists every node of the version.
	Items []GmodNodeRecord `json:"items"`
	// Relations lists parent/child code pairs, parent first.
	Relations [][]string `json:"relations"`
}

// GmodNodeRecord is the wire form of a single classification node.
type GmodNodeRecord struct {
	// Category groups nodes by role, e.g. "ASSET FUNCTION" or "PRODUCT".
	Category string `json:"category"`
	// Type refines the category, e.g. "LEAF", "GROUP", "SELECTION", "TYPE".
	Type string `json:"type"`
	// Code is the node identity within its version, e.g. "411.1".
	Code string `json:"code"`
	// Name is the normative short name.
	Name string `json:"name"`
	// CommonName is the optional human-facing synonym.
	CommonName *string `json:"commonName,omitempty"`
	// Definition is the optional normative definition text.
	Definition *string `json:"definition,omitempty"`
	// CommonDefinition is the optional human-facing definition.
	CommonDefinition *string `json:"commonDefinition,omitempty"`
	// InstallSubstructure flags nodes whose substructure is installed by default.
	InstallSubstructure *bool `json:"installSubstructure,omitempty"`
	// NormalAssignmentNames remaps assignment display names keyed by child code.
	NormalAssignmentNames map[string]string `json:"normalAssignmentNames,omitempty"`
}

// ConversionPack is the published conversion table for one target version.
// Entries describe how nodes of the previous version map into this one.
type ConversionPack struct {
	// VisVersion is the target version the table converts into.
	VisVersion string `json:"visRelease"`
	// Items maps source node codes to their migration record.
	Items map[string]NodeConversionRecord `json:"items"`
}

// NodeConversionRecord is the wire form of one node's migration instructions.
type NodeConversionRecord struct {
	// Operations names the change kinds, e.g. "changeCode", "merge",
	// "move", "assignmentChange", "assignmentDelete".
	Operations []string `json:"operations"`
	// Source is the node code in the source version.
	Source string `json:"source"`
	// Target is the node code in the target version, when it changed.
	Target string `json:"target,omitempty"`
	// OldAssignment is the previous normal-assignment child code.
	OldAssignment string `json:"oldAssignment,omitempty"`
	// NewAssignment is the replacement normal-assignment child code.
	NewAssignment string `json:"newAssignment,omitempty"`
	// DeleteAssignment is set when the assignment was removed outright.
	DeleteAssignment bool `json:"deleteAssignment,omitempty"`
}
