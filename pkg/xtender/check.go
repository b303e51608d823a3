package xtender

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultCheckTimeout is the per check timeout in seconds unless the
// template sets one.
const DefaultCheckTimeout = int64(5)

// Check is one runnable plugin invocation. Command is always safe to
// display, the clear text of decrypted secrets only lives in secretCommand.
type Check struct {
	Name    string
	Command string
	Timeout int64

	secretCommand     string
	variablesFound    []Variable
	variablesNotFound []Variable
}

// EffectiveCommand returns the command line to execute, preferring the
// clear text command when secrets were resolved.
func (c *Check) EffectiveCommand() string {
	if c.secretCommand != "" {
		log.Debugf("check %s uses an encrypted variable, running the clear text command", c.Name)

		return c.secretCommand
	}

	return c.Command
}

// ExpandRanges turns a check containing !!A:x..y!! markers into one check
// per combination. A check without markers expands to itself.
func (c *Check) ExpandRanges() ([]*Check, error) {
	nameRanges := sortedUniqueRanges(extractRanges(c.Name))
	commandRanges := sortedUniqueRanges(extractRanges(c.Command))

	if len(nameRanges) != len(commandRanges) {
		return nil, fmt.Errorf("ranges in name and command do not match: %v != %v", nameRanges, commandRanges)
	}
	for i := range nameRanges {
		if nameRanges[i] != commandRanges[i] {
			return nil, fmt.Errorf("ranges in name and command do not match: %v != %v", nameRanges, commandRanges)
		}
	}

	switch len(nameRanges) {
	case 0:
		return []*Check{c}, nil
	case 1:
		return c.expandSingleRange(&nameRanges[0]), nil
	case 2:
		return c.expandDoubleRange(&nameRanges[0], &nameRanges[1]), nil
	default:
		return nil, fmt.Errorf("only 1 or 2 ranges are supported")
	}
}

func (c *Check) expandSingleRange(rng *checkRange) []*Check {
	checks := make([]*Check, 0, rng.end-rng.start+1)
	for i := rng.start; i <= rng.end; i++ {
		checks = append(checks, c.substituted(rng, i))
	}

	return checks
}

func (c *Check) expandDoubleRange(rng1, rng2 *checkRange) []*Check {
	checks := make([]*Check, 0, (rng1.end-rng1.start+1)*(rng2.end-rng2.start+1))
	for i := rng1.start; i <= rng1.end; i++ {
		for j := rng2.start; j <= rng2.end; j++ {
			checks = append(checks, c.substituted(rng1, i).substituted(rng2, j))
		}
	}

	return checks
}

func (c *Check) substituted(rng *checkRange, value int) *Check {
	val := strconv.Itoa(value)
	expanded := &Check{
		Name:              strings.ReplaceAll(c.Name, rng.placeholder(), val),
		Command:           strings.ReplaceAll(c.Command, rng.placeholder(), val),
		Timeout:           c.Timeout,
		variablesFound:    c.variablesFound,
		variablesNotFound: c.variablesNotFound,
	}
	if c.secretCommand != "" {
		expanded.secretCommand = strings.ReplaceAll(c.secretCommand, rng.placeholder(), val)
	}

	return expanded
}

// TotalTimeFromTimeouts sums up the worst case run time of the given checks.
func TotalTimeFromTimeouts(checks []*Check) time.Duration {
	var total time.Duration
	for _, check := range checks {
		total += time.Duration(check.Timeout) * time.Second
	}

	return total
}

// CheckBuilder assembles a Check and resolves its variables.
type CheckBuilder struct {
	name    string
	command string
	timeout int64
	keys    *KeyStore
}

func NewCheckBuilder() *CheckBuilder {
	return &CheckBuilder{timeout: DefaultCheckTimeout}
}

func (b *CheckBuilder) Name(name string) *CheckBuilder {
	b.name = name

	return b
}

func (b *CheckBuilder) Command(command string) *CheckBuilder {
	b.command = command

	return b
}

func (b *CheckBuilder) Timeout(timeout int64) *CheckBuilder {
	b.timeout = timeout

	return b
}

func (b *CheckBuilder) KeyStore(keys *KeyStore) *CheckBuilder {
	b.keys = keys

	return b
}

// BuildRaw skips variable resolution and takes name and command verbatim.
func (b *CheckBuilder) BuildRaw() *Check {
	return &Check{
		Name:    b.name,
		Command: b.command,
		Timeout: b.timeout,
	}
}

// Build resolves the variables of name and command. The public fields keep
// the obfuscated form, the clear text command with decrypted secrets is
// stored separately.
func (b *CheckBuilder) Build() (*Check, error) {
	name, err := ResolveVariables(b.name, b.keys)
	if err != nil {
		return nil, err
	}

	command, err := ResolveVariables(b.command, b.keys)
	if err != nil {
		return nil, err
	}

	check := &Check{
		Name:              name.Obfuscated,
		Command:           command.Obfuscated,
		Timeout:           b.timeout,
		variablesFound:    command.Found,
		variablesNotFound: command.NotFound,
	}
	if command.hasSecret {
		check.secretCommand = command.Clear
	}

	return check, nil
}
