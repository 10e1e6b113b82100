package registry

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var legacyNames = map[string]string{
	"College Student Posts": "College Student Journey",
	"Processed Posts":       "Professional Posts",
}

const rawSuffix = " (Raw)"

// DisplayName derives a label from a dataset file name. raw adds a "(Raw)"
// suffix to raw_ uploads. Collisions are possible and not guarded against.
func DisplayName(file string, raw bool) string {
	name := strings.TrimSuffix(file, ".json")
	switch {
	case strings.HasPrefix(name, "raw_"):
		base := humanize(strings.TrimPrefix(name, "raw_"))
		if raw {
			return base + rawSuffix
		}
		return base
	case strings.HasPrefix(name, "processed_raw_"):
		return humanize(strings.TrimPrefix(name, "processed_raw_"))
	case strings.HasPrefix(name, "processed_"):
		return humanize(strings.TrimPrefix(name, "processed_"))
	}

	clean := humanize(name)
	if clean == "Sample Raw Dataset" {
		if raw {
			return "Sample Dataset" + rawSuffix
		}
		return "Sample Dataset"
	}
	if mapped, ok := legacyNames[clean]; ok {
		return mapped
	}
	return clean
}

func humanize(s string) string {
	return titleCase(strings.ReplaceAll(s, "_", " "))
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
