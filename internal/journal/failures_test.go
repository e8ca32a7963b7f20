package journal

import (
	"errors"
	"fmt"
	"testing"
)

func TestFailureFromError_Config(t *testing.T) {
	err := &ConfigFailureError{Code: "StellarisPath", Message: "expected directory not found"}
	f, ferr := failureFromError(err)
	if ferr != nil {
		t.Fatalf("failureFromError: %v", ferr)
	}
	if f.FailureClass != FailureClassConfig {
		t.Fatalf("expected config class, got %s", f.FailureClass)
	}
	if f.ErrorCode != "StellarisPath" || f.ErrorMessage != "expected directory not found" {
		t.Fatalf("unexpected failure: %+v", f)
	}
	if f.Asset != nil {
		t.Fatalf("config failures carry no asset: %+v", f)
	}
}

func TestFailureFromError_Metadata(t *testing.T) {
	err := &MetadataFailureError{Code: "TechIcons", Message: "tech_lasers has no icon"}
	f, ferr := failureFromError(err)
	if ferr != nil {
		t.Fatalf("failureFromError: %v", ferr)
	}
	if f.FailureClass != FailureClassMetadata {
		t.Fatalf("expected metadata class, got %s", f.FailureClass)
	}
}

func TestFailureFromError_ConversionCarriesAsset(t *testing.T) {
	err := &ConversionFailureError{Asset: "ui/background_tutorial_detailed", Message: "1 asset failed"}
	f, ferr := failureFromError(err)
	if ferr != nil {
		t.Fatalf("failureFromError: %v", ferr)
	}
	if f.FailureClass != FailureClassConversion {
		t.Fatalf("expected conversion class, got %s", f.FailureClass)
	}
	if f.Asset == nil || *f.Asset != "ui/background_tutorial_detailed" {
		t.Fatalf("asset not carried: %+v", f)
	}
	if f.ErrorCode != "ConversionFailure" {
		t.Fatalf("expected fallback code, got %s", f.ErrorCode)
	}
}

func TestFailureFromError_WrappedTypedError(t *testing.T) {
	inner := &SystemFailureError{Code: "DriverError", Message: "invariant violation"}
	wrapped := fmt.Errorf("run aborted: %w", inner)

	f, ferr := failureFromError(wrapped)
	if ferr != nil {
		t.Fatalf("failureFromError: %v", ferr)
	}
	if f.FailureClass != FailureClassSystem || f.ErrorCode != "DriverError" {
		t.Fatalf("wrapped error not classified: %+v", f)
	}
}

func TestFailureFromError_UnknownDefaultsToSystem(t *testing.T) {
	f, ferr := failureFromError(errors.New("disk on fire"))
	if ferr != nil {
		t.Fatalf("failureFromError: %v", ferr)
	}
	if f.FailureClass != FailureClassSystem {
		t.Fatalf("expected system class, got %s", f.FailureClass)
	}
	if f.ErrorCode != "UnknownError" || f.ErrorMessage != "disk on fire" {
		t.Fatalf("unexpected failure: %+v", f)
	}
}

func TestFailureFromError_NilRejected(t *testing.T) {
	if _, err := failureFromError(nil); err == nil {
		t.Fatal("expected error for nil input")
	}
}

func TestTypedErrors_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	cases := []error{
		&ConfigFailureError{Message: "m", Cause: cause},
		&MetadataFailureError{Message: "m", Cause: cause},
		&ConversionFailureError{Message: "m", Cause: cause},
		&SystemFailureError{Message: "m", Cause: cause},
	}
	for _, err := range cases {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}

func TestTypedErrors_MessageShapes(t *testing.T) {
	withCode := &ConfigFailureError{Code: "OutputDir", Message: "cannot create"}
	if got := withCode.Error(); got != "config failure (OutputDir): cannot create" {
		t.Fatalf("unexpected message: %s", got)
	}
	withoutCode := &ConfigFailureError{Message: "cannot create"}
	if got := withoutCode.Error(); got != "config failure: cannot create" {
		t.Fatalf("unexpected message: %s", got)
	}
	withAsset := &ConversionFailureError{Asset: "sprites/checkbox_hover", Code: "ConversionFailure", Message: "2 assets failed"}
	if got := withAsset.Error(); got != "conversion failure asset=sprites/checkbox_hover (ConversionFailure): 2 assets failed" {
		t.Fatalf("unexpected message: %s", got)
	}
}
