package optionsadapter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-openfeature/ferrors"
)

// Snapshots keep flag values as a tree grouped by the dotted segments of the
// flag key: "billing.invoices" is stored as {"billing": {"invoices": v}}.

func flagSegments(flag string) []string {
	var out []string
	for _, part := range strings.Split(flag, ".") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// findFlagValue reads flag from a snapshot. A literal dotted key wins over
// the grouped form.
func findFlagValue(tree map[string]any, flag string) (any, bool) {
	if len(tree) == 0 {
		return nil, false
	}
	if value, ok := tree[flag]; ok {
		return value, true
	}
	segments := flagSegments(flag)
	if len(segments) == 0 {
		return nil, false
	}
	group := tree
	for _, segment := range segments[:len(segments)-1] {
		next, ok := group[segment].(map[string]any)
		if !ok {
			return nil, false
		}
		group = next
	}
	value, ok := group[segments[len(segments)-1]]
	return value, ok
}

func putFlagValue(tree map[string]any, flag string, value any) error {
	segments := flagSegments(flag)
	if len(segments) == 0 {
		return ferrors.WrapSentinel(ferrors.ErrPathRequired, "optionsadapter: flag key is required", map[string]any{
			ferrors.MetaFlag: flag,
		})
	}
	group := tree
	for _, segment := range segments[:len(segments)-1] {
		existing, found := group[segment]
		if !found {
			next := map[string]any{}
			group[segment] = next
			group = next
			continue
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return ferrors.WrapSentinel(ferrors.ErrPathInvalid,
				fmt.Sprintf("optionsadapter: flag %q is nested under %q, which already holds a value", flag, segment),
				map[string]any{ferrors.MetaFlag: flag, ferrors.MetaPath: segment})
		}
		group = next
	}
	group[segments[len(segments)-1]] = value
	return nil
}

// dropFlagValue removes flag and any flag group it leaves empty.
func dropFlagValue(tree map[string]any, flag string) bool {
	return dropSegments(tree, flagSegments(flag))
}

func dropSegments(group map[string]any, segments []string) bool {
	if len(segments) == 0 || len(group) == 0 {
		return false
	}
	head := segments[0]
	if len(segments) == 1 {
		if _, ok := group[head]; !ok {
			return false
		}
		delete(group, head)
		return true
	}
	child, ok := group[head].(map[string]any)
	if !ok || !dropSegments(child, segments[1:]) {
		return false
	}
	if len(child) == 0 {
		delete(group, head)
	}
	return true
}

// flagEntries lists every flag value of a snapshot under its dotted key,
// each key prepended with prefix.
func flagEntries(tree map[string]any, prefix string) map[string]any {
	out := map[string]any{}
	collectFlagEntries(tree, prefix, out)
	return out
}

func collectFlagEntries(group map[string]any, prefix string, out map[string]any) {
	for key, value := range group {
		if key == "" {
			continue
		}
		if child, ok := value.(map[string]any); ok {
			collectFlagEntries(child, prefix+key+".", out)
			continue
		}
		out[prefix+key] = value
	}
}
