package xtender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sni/shelltoken"
)

// Run executes the check and never fails, broken commands and timeouts
// turn into UNKNOWN results.
func (c *Check) Run(ctx context.Context) *CheckResult {
	builder := NewCheckResultBuilder().
		Name(c.Name).
		Command(c.Command).
		Variables(c.variablesFound, c.variablesNotFound)

	log.Debugf("processing check: %s", c.Name)

	if c.secretCommand != "" {
		builder = builder.SecretCommand(c.secretCommand)
	}

	_, argv, err := shelltoken.SplitLinux(c.EffectiveCommand())
	if err != nil {
		log.Errorf("failed to split the command of check %s: %s", c.Name, err.Error())

		return builder.
			Status(CheckExitUnknown).
			ShortOutput("UNKNOWN: Command split error").
			Build()
	}

	// SplitLinux pads a blank command to argv=[""] and eats argv
	// entirely when every token is an env assignment
	if len(argv) == 0 || argv[0] == "" {
		log.Errorf("after splitting the command by words, the command of check %s is empty", c.Name)

		return builder.
			Status(CheckExitUnknown).
			ShortOutput("UNKNOWN: Empty command").
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.Timeout)*time.Second)
	defer cancel()

	cmd := exec.Command(argv[0], argv[1:]...) //nolint:gosec // running plugins is the whole point

	var errbuf bytes.Buffer
	var outbuf bytes.Buffer
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf

	// prevent the children from receiving signals meant for us
	setSysProcAttr(cmd)

	startTime := time.Now()

	err = cmd.Start()
	if err != nil {
		log.Debugf("failed to spawn command of check %s: %s", c.Name, err.Error())

		return builder.
			Status(CheckExitUnknown).
			ParseOutput(fmt.Sprintf("Failed to execute command with error: '%s'", err.Error())).
			ExecutionTime(time.Since(startTime)).
			Build()
	}

	// https://github.com/golang/go/issues/18874
	// timeout does not work for child processes and/or if file handles are still open
	go func(proc *os.Process) {
		<-ctx.Done() // wait till command runs into timeout or is finished (canceled)
		if proc == nil {
			return
		}
		cmdErr := ctx.Err()
		switch {
		case errors.Is(cmdErr, context.DeadlineExceeded):
			// timeout
			processTimeoutKill(proc)
		case errors.Is(cmdErr, context.Canceled):
			// normal exit
			LogDebug(proc.Kill())
		}
	}(cmd.Process)

	waitErr := cmd.Wait()
	executionTime := time.Since(startTime)
	cancel()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if stderr := strings.TrimSpace(errbuf.String()); stderr != "" {
			log.Debugf("check %s wrote to stderr before the timeout: %s", c.Name, stderr)
		}

		return builder.
			Status(CheckExitUnknown).
			ShortOutput(timeoutMessage(c.Timeout)).
			ExecutionTime(executionTime).
			Build()
	}

	exitCode := CheckExitUnknown
	if code, ok := exitCodeFromState(cmd, waitErr); ok {
		exitCode = code
	}

	return builder.
		Status(exitCode).
		ParseOutput(outbuf.String()).
		ExecutionTime(executionTime).
		Build()
}

func timeoutMessage(timeout int64) string {
	if timeout == 1 {
		return "UNKNOWN: Timed out after 1 second"
	}

	return fmt.Sprintf("UNKNOWN: Timed out after %d seconds", timeout)
}

// RunChecksParallel runs all checks concurrently and returns the results
// in check order.
func RunChecksParallel(ctx context.Context, checks []*Check) CheckResults {
	results := make(CheckResults, len(checks))

	var waitGroup sync.WaitGroup
	for i, check := range checks {
		waitGroup.Add(1)
		go func(i int, check *Check) {
			defer waitGroup.Done()
			results[i] = check.Run(ctx)
		}(i, check)
	}
	waitGroup.Wait()

	return results
}

// RunChecksSequential runs the checks one after another in order.
func RunChecksSequential(ctx context.Context, checks []*Check) CheckResults {
	results := make(CheckResults, 0, len(checks))
	for _, check := range checks {
		results = append(results, check.Run(ctx))
	}

	return results
}
