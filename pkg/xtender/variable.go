package xtender

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// variableRe matches Opsview style variable references like $HOSTADDRESS$.
var variableRe = regexp.MustCompile(`\$([A-Z_0-9]+)\$`)

// VariableKind separates plain environment variables from encrypted ones.
type VariableKind int

const (
	VariablePublic VariableKind = iota
	VariableSecret
)

// Variable is one variable reference found in a check name or command.
type Variable struct {
	Kind  VariableKind
	Name  string
	Value string
	Found bool

	secretValue string
}

// render returns the loggable form of the variable. Secret values are
// always masked.
func (v Variable) render() string {
	if !v.Found {
		return v.Name
	}
	if v.Kind == VariableSecret {
		return fmt.Sprintf("%s=***", v.Name)
	}

	return fmt.Sprintf("%s=\"%s\"", v.Name, v.Value)
}

func sortedUniqueVariables(vars []Variable) []Variable {
	sorted := make([]Variable, len(vars))
	copy(sorted, vars)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}

		return sorted[i].Value < sorted[j].Value
	})

	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			unique = append(unique, v)
		}
	}

	return unique
}

// NoKeyFileError is returned when an encrypted variable is met but no key
// file was loaded.
type NoKeyFileError struct {
	Variable string
}

func (e *NoKeyFileError) Error() string {
	return fmt.Sprintf("variable %q is encrypted but no key file was provided", e.Variable)
}

// VariableString is a string with all $NAME$ references resolved from the
// environment. Clear contains the real values, Obfuscated has secrets
// replaced with *** and is safe to log or print.
type VariableString struct {
	Original   string
	Clear      string
	Obfuscated string
	Found      []Variable
	NotFound   []Variable

	hasSecret bool
}

// ResolveVariables substitutes every $NAME$ reference in s from the
// environment. References without a matching environment variable stay
// in place literally. Encrypted values require a key file in the store.
func ResolveVariables(s string, keys *KeyStore) (*VariableString, error) {
	res := &VariableString{
		Original:   s,
		Clear:      s,
		Obfuscated: s,
	}

	for _, match := range variableRe.FindAllStringSubmatch(s, -1) {
		name := match[1]
		placeholder := "$" + name + "$"

		value, ok := os.LookupEnv(name)
		if !ok {
			res.NotFound = append(res.NotFound, Variable{Kind: VariablePublic, Name: name})

			continue
		}

		variable := Variable{Kind: VariablePublic, Name: name, Value: value, Found: true}
		if isPotentiallyEncrypted(value) {
			key := keys.Get()
			if key == nil {
				return nil, &NoKeyFileError{Variable: name}
			}

			clearValue, err := key.Decrypt(value)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt variable %q: %s", name, err.Error())
			}

			variable.Kind = VariableSecret
			variable.secretValue = clearValue
			res.hasSecret = true
			res.Clear = strings.ReplaceAll(res.Clear, placeholder, clearValue)
			res.Obfuscated = strings.ReplaceAll(res.Obfuscated, placeholder, "***")
		} else {
			res.Clear = strings.ReplaceAll(res.Clear, placeholder, value)
			res.Obfuscated = strings.ReplaceAll(res.Obfuscated, placeholder, value)
		}

		res.Found = append(res.Found, variable)
	}

	res.Found = sortedUniqueVariables(res.Found)
	res.NotFound = sortedUniqueVariables(res.NotFound)

	return res, nil
}

// renderVariables joins the loggable form of the variables with commas.
func renderVariables(vars []Variable) string {
	if len(vars) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(vars))
	for _, v := range vars {
		rendered = append(rendered, v.render())
	}

	return strings.Join(rendered, ",")
}
