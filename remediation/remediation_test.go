package remediation

import (
	"testing"

	"github.com/allbin/ciscoreset/recovery"
)

func TestForKindCoversEveryDocumentedKind(t *testing.T) {
	kinds := []recovery.Kind{
		recovery.PortNotFound, recovery.PortPermissionDenied, recovery.PortBusy,
		recovery.PortIO, recovery.WriteFailed, recovery.Timeout,
		recovery.IllegalTransition, recovery.CommandSyntax, recovery.VerificationFailed,
		recovery.PromptUnknown, recovery.InterruptedByUser,
	}
	for _, k := range kinds {
		t.Run(k.String(), func(t *testing.T) {
			advice := ForKind(k)
			if advice.Title == "" {
				t.Error("Title is empty")
			}
			if advice.Explanation == "" {
				t.Error("Explanation is empty")
			}
			if len(advice.Suggestions) == 0 {
				t.Error("Suggestions is empty")
			}
		})
	}
}

func TestForKindUnknownFallsBackToGeneric(t *testing.T) {
	advice := ForKind(recovery.UnknownKind)
	if advice.Title != "Operation failed" {
		t.Errorf("Title = %q, want the generic fallback", advice.Title)
	}
}
