package xtender

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// opsviewVariableRe matches Opsview variable references which can use
// either $NAME$ or %NAME% delimiters and may contain colons.
var opsviewVariableRe = regexp.MustCompile(`[$%]([A-Z_:0-9]+)[$%]`)

// Opspack is a parsed Opsview Opspack export.
type Opspack struct {
	Name        string
	Description string
	Checks      []*Check
}

type opspackExport struct {
	HostTemplate []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"hosttemplate"`
	ServiceCheck []struct {
		Name   string `json:"name"`
		Args   string `json:"args"`
		Plugin struct {
			Name string `json:"name"`
		} `json:"plugin"`
	} `json:"servicecheck"`
}

// harmonizeOpspackVariables rewrites Opsview variable references into the
// $NAME$ form, colons become underscores.
func harmonizeOpspackVariables(s string) string {
	return opsviewVariableRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.Trim(match, "$%")

		return "$" + strings.ReplaceAll(name, ":", "_") + "$"
	})
}

// ParseOpspack parses an Opspack JSON export into its service checks.
func ParseOpspack(raw []byte) (*Opspack, error) {
	export := opspackExport{}
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("invalid opspack json: %s", err.Error())
	}

	if len(export.ServiceCheck) == 0 {
		return nil, fmt.Errorf("no servicechecks found")
	}

	opspack := &Opspack{}
	if len(export.HostTemplate) > 0 {
		opspack.Name = export.HostTemplate[0].Name
		opspack.Description = export.HostTemplate[0].Description
	}

	for _, servicecheck := range export.ServiceCheck {
		command := fmt.Sprintf("%s %s", servicecheck.Plugin.Name, servicecheck.Args)
		check := NewCheckBuilder().
			Name(harmonizeOpspackVariables(servicecheck.Name)).
			Command(harmonizeOpspackVariables(command)).
			BuildRaw()
		opspack.Checks = append(opspack.Checks, check)
	}

	return opspack, nil
}

// Template renders the opspack as a runnable template, the host template
// name and description go into a comment header.
func (o *Opspack) Template() string {
	var out strings.Builder
	fmt.Fprintf(&out, "# name: %s\n", o.Name)
	fmt.Fprintf(&out, "# description: %s\n", o.Description)
	for _, check := range o.Checks {
		fmt.Fprintf(&out, "- name: %s\n  command: |\n    %s\n", check.Name, check.Command)
	}

	return out.String()
}
