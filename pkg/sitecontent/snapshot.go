package sitecontent

import "strings"

// Snapshot-on-transition guard. Tracker documents pass through discrete
// import events signalled by a marker field changing value; the document
// state from immediately before the most recent import is kept as a
// one-deep backup. This is not a history log: each qualifying transition
// overwrites the previous backup.

// snapshotDecision is the pure guard over (oldDoc, newDoc, markerPath).
type snapshotDecision struct {
	Snapshot   bool
	FromMarker string
	ToMarker   string
}

// decideSnapshot returns whether a write constitutes a qualifying
// transition. No snapshot when there is no prior document, when the new
// document signals no marker, or when the marker is unchanged.
func decideSnapshot(oldDoc, newDoc Document, markerPath string) snapshotDecision {
	newMarker := markerString(newDoc, markerPath)
	if oldDoc == nil {
		return snapshotDecision{}
	}
	if newMarker == "" {
		return snapshotDecision{}
	}
	oldMarker := markerString(oldDoc, markerPath)
	if oldMarker == newMarker {
		return snapshotDecision{}
	}
	return snapshotDecision{Snapshot: true, FromMarker: oldMarker, ToMarker: newMarker}
}

// markerString resolves a dotted path ("eligibility.computedAt") inside a
// document and renders the leaf as a string; missing segments yield "".
func markerString(doc Document, path string) string {
	if doc == nil || path == "" {
		return ""
	}

	var cur any = map[string]any(doc)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[seg]
	}

	s, _ := cur.(string)
	return s
}
