package flex

// resolveAliases moves each alias value onto its canonical key. An already
// present canonical key is never overwritten.
func resolveAliases(args map[string]interface{}, pairs []aliasPair) map[string]interface{} {
	for _, p := range pairs {
		v, ok := args[p.alias]
		if !ok {
			continue
		}
		if _, taken := args[p.canonical]; taken {
			continue
		}
		args[p.canonical] = v
		delete(args, p.alias)
	}
	return args
}
