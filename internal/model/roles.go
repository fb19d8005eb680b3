package model

// ContainerKind tags a node with the role it plays for visibility and
// overlay selection.
type ContainerKind string

const (
	KindPlain       ContainerKind = ""
	KindScrollable  ContainerKind = "scrollable"
	KindOverlayRoot ContainerKind = "overlay-root"
)

// ScrollableTypes lists widget types that page their content and so bound
// the visibility of their descendants.
var ScrollableTypes = map[string]bool{
	"ListView":             true,
	"GridView":             true,
	"ExpandableListView":   true,
	"AbsListView":          true,
	"ScrollView":           true,
	"HorizontalScrollView": true,
	"NestedScrollView":     true,
	"RecyclerView":         true,
	"WebView":              true,
}

// TypeAliases maps short names accepted on the command line and in queries
// to concrete widget types.
var TypeAliases = map[string]string{
	"btn":    "Button",
	"txt":    "TextView",
	"input":  "EditText",
	"img":    "ImageView",
	"chk":    "CheckBox",
	"toggle": "ToggleButton",
	"radio":  "RadioButton",
	"list":   "ListView",
	"scroll": "ScrollView",
	"web":    "WebView",
}

// MetaTypes maps grouping names to the concrete types they expand to.
var MetaTypes = map[string][]string{
	"scrollable": {"ListView", "GridView", "ScrollView", "HorizontalScrollView", "RecyclerView", "WebView"},
	"editable":   {"EditText", "AutoCompleteTextView"},
}

// ExpandTypes resolves aliases and meta-types. Duplicates are removed and
// order is preserved.
func ExpandTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	var expanded []string
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			expanded = append(expanded, t)
		}
	}
	for _, t := range types {
		if concrete, ok := MetaTypes[t]; ok {
			for _, c := range concrete {
				add(c)
			}
			continue
		}
		add(MapType(t))
	}
	return expanded
}

// MapType resolves a short alias to its concrete type, or returns t unchanged.
func MapType(t string) string {
	if full, ok := TypeAliases[t]; ok {
		return full
	}
	return t
}

// KindForType infers the container kind from a widget's declared type and
// supertypes.
func KindForType(typ string, supertypes []string) ContainerKind {
	if ScrollableTypes[typ] {
		return KindScrollable
	}
	for _, s := range supertypes {
		if ScrollableTypes[s] {
			return KindScrollable
		}
	}
	return KindPlain
}
