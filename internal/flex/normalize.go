package flex

import "strings"

// keyRewrite copies the first present variant onto canonical when canonical is absent.
type keyRewrite struct {
	canonical string
	variants  []string
}

var keyRewrites = []keyRewrite{
	{canonical: "phone", variants: []string{"phoneNumber", "phone_number"}},
	{canonical: "group_id", variants: []string{"groupId", "group"}},
	{canonical: "contact_id", variants: []string{"contactId"}},
	{canonical: "template_id", variants: []string{"templateId"}},
	{canonical: "campaign_id", variants: []string{"campaignId"}},
}

type normalizeStep func(args map[string]interface{}) bool

var normalizeSteps = []normalizeStep{
	rewriteKeys,
	splitFullName,
	foldContacts,
}

// Normalize applies the function-agnostic key heuristics to args in place.
// Each step either applies fully or leaves args untouched.
func Normalize(args map[string]interface{}) map[string]interface{} {
	for _, step := range normalizeSteps {
		step(args)
	}
	return args
}

func rewriteKeys(args map[string]interface{}) bool {
	changed := false
	for _, rw := range keyRewrites {
		if _, ok := args[rw.canonical]; ok {
			continue
		}
		for _, variant := range rw.variants {
			if v, ok := args[variant]; ok {
				args[rw.canonical] = v
				changed = true
				break
			}
		}
	}
	return changed
}

// splitFullName expands full_name (or name) into first_name/last_name when
// neither of those is present. The last token becomes last_name.
func splitFullName(args map[string]interface{}) bool {
	if _, ok := args["first_name"]; ok {
		return false
	}
	if _, ok := args["last_name"]; ok {
		return false
	}
	value, ok := args["full_name"]
	if !ok {
		value, ok = args["name"]
	}
	if !ok || value == nil {
		return false
	}
	if _, isList := asSlice(value); isList {
		return false
	}
	if _, isMap := value.(map[string]interface{}); isMap {
		return false
	}
	parts := strings.Fields(toString(value))
	switch len(parts) {
	case 0:
		return false
	case 1:
		args["first_name"] = parts[0]
	default:
		args["first_name"] = strings.Join(parts[:len(parts)-1], " ")
		args["last_name"] = parts[len(parts)-1]
	}
	return true
}

// foldContacts sets phone from the first non-blank entry of a contacts list.
func foldContacts(args map[string]interface{}) bool {
	if _, ok := args["phone"]; ok {
		return false
	}
	items, ok := asSlice(args["contacts"])
	if !ok {
		return false
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		if s := strings.TrimSpace(toString(item)); s != "" {
			args["phone"] = s
			return true
		}
	}
	return false
}
