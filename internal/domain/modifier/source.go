package modifier

// SourceKind identifies where a modifier list came from
type SourceKind string

const (
	SourceItem       SourceKind = "item"
	SourceFeat       SourceKind = "feat"
	SourceTrait      SourceKind = "trait"
	SourceBackground SourceKind = "background"
	SourceRace       SourceKind = "race"
	SourceResource   SourceKind = "resource"
	SourceFeature    SourceKind = "feature"
)

// Source is one contributor of modifiers, already filtered to those whose
// precondition (equipped, attuned, owned, active) holds.
type Source struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Kind      SourceKind `json:"kind"`
	Modifiers List       `json:"modifiers"`
}

// Each calls fn for every applicable modifier across sources
func Each(sources []Source, fn func(Source, Modifier)) {
	for _, src := range sources {
		for _, m := range src.Modifiers {
			if Applies(m) {
				fn(src, m)
			}
		}
	}
}
