// Package broadcast sends a template to every number of a distribution list,
// one at a time with a configurable delay between sends.
package broadcast

import (
	"fmt"
	"log"
	"strings"
	"time"

	"console-gateway/internal/models"
)

// TemplateSendFunc performs one template send to one recipient.
type TemplateSendFunc func(templateName, recipient string, variables map[string]string) error

// Progress is the observable state after each attempted recipient.
type Progress struct {
	Current       int      `json:"current"`
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Failed        int      `json:"failed"`
	FailedNumbers []string `json:"failedNumbers"`
}

// Result is the final tally of a completed run.
type Result struct {
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Failed        int      `json:"failed"`
	FailedNumbers []string `json:"failedNumbers"`
}

// Dispatcher runs bulk sends. Delay applies between consecutive sends, not
// after the last one; a zero delay is valid and used in tests. Sleep is
// replaceable for testing and defaults to time.Sleep.
type Dispatcher struct {
	Send       TemplateSendFunc
	Delay      time.Duration
	OnProgress func(Progress)
	Sleep      func(time.Duration)
}

func NewDispatcher(send TemplateSendFunc, delay time.Duration) *Dispatcher {
	return &Dispatcher{Send: send, Delay: delay, Sleep: time.Sleep}
}

// ValidateVariables checks every template variable has a non-empty binding.
func ValidateVariables(tmpl models.Template, variables map[string]string) error {
	var missing []string
	for _, v := range tmpl.Variables {
		if strings.TrimSpace(variables[v.Name]) == "" {
			missing = append(missing, v.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Dispatch sends tmpl to every number in order. Missing variable bindings
// fail fast before any send. Individual failures are tallied and never halt
// the batch; every number is attempted exactly once. The caller decides
// whether to retry the failed subset.
func (d *Dispatcher) Dispatch(numbers []string, tmpl models.Template, variables map[string]string) (*Result, error) {
	if err := ValidateVariables(tmpl, variables); err != nil {
		return nil, err
	}

	result := &Result{Total: len(numbers), FailedNumbers: []string{}}

	for i, number := range numbers {
		if err := d.Send(tmpl.Name, number, variables); err != nil {
			log.Printf("Failed to broadcast %s to %s: %v", tmpl.Name, number, err)
			result.Failed++
			result.FailedNumbers = append(result.FailedNumbers, number)
		} else {
			result.Success++
		}

		if d.OnProgress != nil {
			failed := make([]string, len(result.FailedNumbers))
			copy(failed, result.FailedNumbers)
			d.OnProgress(Progress{
				Current:       i + 1,
				Total:         result.Total,
				Success:       result.Success,
				Failed:        result.Failed,
				FailedNumbers: failed,
			})
		}

		if i < len(numbers)-1 && d.Delay > 0 {
			d.sleep(d.Delay)
		}
	}

	return result, nil
}

func (d *Dispatcher) sleep(dur time.Duration) {
	if d.Sleep != nil {
		d.Sleep(dur)
		return
	}
	time.Sleep(dur)
}
