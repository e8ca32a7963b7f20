package journal

import (
	"errors"
	"fmt"
)

// ConfigFailureError represents an unusable environment: bad install path,
// missing output permissions, absent external tools.
type ConfigFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ConfigFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("config failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("config failure: %s", e.Message)
}

func (e *ConfigFailureError) Unwrap() error { return e.Cause }

// MetadataFailureError represents structurally invalid technology metadata.
type MetadataFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *MetadataFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("metadata failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("metadata failure: %s", e.Message)
}

func (e *MetadataFailureError) Unwrap() error { return e.Cause }

// ConversionFailureError represents a run that completed with at least one
// failed asset or crop. Asset names the first failed manifest key.
type ConversionFailureError struct {
	Asset   string
	Code    string
	Message string
	Cause   error
}

func (e *ConversionFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Asset != "" && e.Code != "" {
		return fmt.Sprintf("conversion failure asset=%s (%s): %s", e.Asset, e.Code, e.Message)
	}
	if e.Asset != "" {
		return fmt.Sprintf("conversion failure asset=%s: %s", e.Asset, e.Message)
	}
	return fmt.Sprintf("conversion failure: %s", e.Message)
}

func (e *ConversionFailureError) Unwrap() error { return e.Cause }

// SystemFailureError represents crashes and unexpected internal errors.
type SystemFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SystemFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("system failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("system failure: %s", e.Message)
}

func (e *SystemFailureError) Unwrap() error { return e.Cause }

func failureFromError(err error) (Failure, error) {
	if err == nil {
		return Failure{}, errors.New("nil error")
	}

	var cf *ConfigFailureError
	if errors.As(err, &cf) && cf != nil {
		return Failure{
			FailureClass: FailureClassConfig,
			ErrorCode:    nonEmptyOr(cf.Code, "ConfigFailure"),
			ErrorMessage: nonEmptyOr(cf.Message, cf.Error()),
		}, nil
	}

	var mf *MetadataFailureError
	if errors.As(err, &mf) && mf != nil {
		return Failure{
			FailureClass: FailureClassMetadata,
			ErrorCode:    nonEmptyOr(mf.Code, "MetadataFailure"),
			ErrorMessage: nonEmptyOr(mf.Message, mf.Error()),
		}, nil
	}

	var vf *ConversionFailureError
	if errors.As(err, &vf) && vf != nil {
		var assetPtr *string
		if vf.Asset != "" {
			a := vf.Asset
			assetPtr = &a
		}
		return Failure{
			FailureClass: FailureClassConversion,
			Asset:        assetPtr,
			ErrorCode:    nonEmptyOr(vf.Code, "ConversionFailure"),
			ErrorMessage: nonEmptyOr(vf.Message, vf.Error()),
		}, nil
	}

	var sf *SystemFailureError
	if errors.As(err, &sf) && sf != nil {
		return Failure{
			FailureClass: FailureClassSystem,
			ErrorCode:    nonEmptyOr(sf.Code, "SystemFailure"),
			ErrorMessage: nonEmptyOr(sf.Message, sf.Error()),
		}, nil
	}

	// Unknown error: classify as system failure, the most conservative of
	// the four classes.
	return Failure{
		FailureClass: FailureClassSystem,
		ErrorCode:    "UnknownError",
		ErrorMessage: err.Error(),
	}, nil
}

func nonEmptyOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
