package workflow

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed predefined/templates.yaml
var predefinedYAML []byte

type predefinedTemplate struct {
	Name            string          `yaml:"name"`
	Description     string          `yaml:"description"`
	LicenseType     LicenseType     `yaml:"licenseType"`
	LicenseCategory LicenseCategory `yaml:"licenseCategory"`
	Steps           []Step          `yaml:"steps"`
}

var (
	predefinedOnce sync.Once
	predefined     map[string]predefinedTemplate
	predefinedErr  error
)

func loadPredefined() (map[string]predefinedTemplate, error) {
	predefinedOnce.Do(func() {
		predefinedErr = yaml.Unmarshal(predefinedYAML, &predefined)
		if predefinedErr != nil {
			predefinedErr = fmt.Errorf("decode predefined templates: %w", predefinedErr)
		}
	})
	return predefined, predefinedErr
}

// PredefinedKeys lists the built-in template skeletons in sorted order.
func PredefinedKeys() ([]string, error) {
	all, err := loadPredefined()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// InstantiatePredefined builds an unsaved, active draft from the skeleton
// named key. Each step's placeholder department is replaced with the first
// department whose name matches it case-insensitively as a substring (either
// way round), else the first department. With no departments the
// placeholder is kept.
func InstantiatePredefined(key string, departments []string) (Template, error) {
	all, err := loadPredefined()
	if err != nil {
		return Template{}, err
	}
	p, ok := all[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownPredefined, key)
	}

	steps := cloneSteps(p.Steps)
	for i := range steps {
		steps[i].AssignedDepartment = matchDepartment(steps[i].AssignedDepartment, departments)
		if steps[i].NextSteps == nil {
			steps[i].NextSteps = []string{}
		}
	}

	return Template{
		Name:            p.Name,
		Description:     p.Description,
		LicenseType:     p.LicenseType,
		LicenseCategory: p.LicenseCategory,
		Steps:           steps,
		IsActive:        true,
	}, nil
}

func matchDepartment(placeholder string, departments []string) string {
	if len(departments) == 0 {
		return placeholder
	}
	want := strings.ToLower(strings.TrimSpace(placeholder))
	if want != "" {
		for _, d := range departments {
			have := strings.ToLower(strings.TrimSpace(d))
			if have == "" {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return d
			}
		}
	}
	return departments[0]
}
