package broadcast

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"console-gateway/internal/models"
)

var welcomeTemplate = models.Template{
	Name:        "welcome",
	DisplayName: "Message de bienvenue",
	Variables: []models.TemplateVariable{
		{Name: "customerName", Label: "Nom du client", Type: "text"},
	},
}

func TestDispatchTalliesPartialFailures(t *testing.T) {
	recipients := []string{"33611111111", "33622222222", "33633333333"}
	var attempted []string

	d := NewDispatcher(func(_, recipient string, _ map[string]string) error {
		attempted = append(attempted, recipient)
		if recipient == "33622222222" {
			return errors.New("recipient unreachable")
		}
		return nil
	}, 0)

	result, err := d.Dispatch(recipients, welcomeTemplate, map[string]string{"customerName": "Mme Dupont"})
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if result.Success != 2 || result.Failed != 1 {
		t.Errorf("Expected 2 successes and 1 failure, got %d/%d", result.Success, result.Failed)
	}
	if !reflect.DeepEqual(result.FailedNumbers, []string{"33622222222"}) {
		t.Errorf("Expected failed numbers [33622222222], got %v", result.FailedNumbers)
	}
	if !reflect.DeepEqual(attempted, recipients) {
		t.Errorf("Every recipient must be attempted in order, got %v", attempted)
	}
}

func TestDispatchMissingVariableFailsFast(t *testing.T) {
	calls := 0
	d := NewDispatcher(func(_, _ string, _ map[string]string) error {
		calls++
		return nil
	}, 0)

	_, err := d.Dispatch([]string{"33611111111"}, welcomeTemplate, map[string]string{"customerName": ""})
	if err == nil {
		t.Fatal("Expected validation error for empty variable binding")
	}
	if calls != 0 {
		t.Errorf("No send may happen on validation failure, got %d calls", calls)
	}
}

func TestDispatchProgressAfterEveryItem(t *testing.T) {
	var progress []Progress
	d := NewDispatcher(func(_, recipient string, _ map[string]string) error {
		if recipient == "b" {
			return errors.New("boom")
		}
		return nil
	}, 0)
	d.OnProgress = func(p Progress) { progress = append(progress, p) }

	_, err := d.Dispatch([]string{"a", "b", "c"}, models.Template{Name: "noop"}, nil)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if len(progress) != 3 {
		t.Fatalf("Expected 3 progress updates, got %d", len(progress))
	}
	want := Progress{Current: 2, Total: 3, Success: 1, Failed: 1, FailedNumbers: []string{"b"}}
	if !reflect.DeepEqual(progress[1], want) {
		t.Errorf("Second update mismatch:\nwant %+v\ngot  %+v", want, progress[1])
	}
	final := progress[2]
	if final.Current != 3 || final.Success != 2 || final.Failed != 1 {
		t.Errorf("Final update mismatch: %+v", final)
	}
}

func TestDispatchDelayBetweenSendsOnly(t *testing.T) {
	var slept []time.Duration
	d := NewDispatcher(func(_, _ string, _ map[string]string) error { return nil }, time.Second)
	d.Sleep = func(dur time.Duration) { slept = append(slept, dur) }

	_, err := d.Dispatch([]string{"a", "b", "c"}, models.Template{Name: "noop"}, nil)
	if err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	// Two gaps for three recipients, none after the last.
	if len(slept) != 2 {
		t.Errorf("Expected 2 sleeps for 3 recipients, got %d", len(slept))
	}
	for _, dur := range slept {
		if dur != time.Second {
			t.Errorf("Expected 1s delay, got %v", dur)
		}
	}
}

func TestValidateVariables(t *testing.T) {
	err := ValidateVariables(welcomeTemplate, map[string]string{})
	if err == nil {
		t.Fatal("Expected error for unbound variable")
	}

	if err := ValidateVariables(welcomeTemplate, map[string]string{"customerName": "Jean"}); err != nil {
		t.Errorf("Bound variables should validate, got %v", err)
	}
}
