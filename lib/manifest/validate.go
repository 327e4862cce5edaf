// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"sort"
	"time"

	"github.com/bureau-foundation/duoshell/lib/validate"
)

// Validate checks a Manifest for structural issues. Returns a list of
// human-readable issue descriptions; an empty list means the manifest
// is valid.
//
// Checks:
//   - At least one module is required
//   - Module names are valid and unique within the manifest
//   - Every module declares at least one method
//   - Method names are valid; channels have the form "<domain>:<action>"
//   - Parameter kinds are known
//   - Option timeouts parse and are positive; retry counts are non-negative
func Validate(manifest *Manifest) []string {
	var issues []string

	if len(manifest.Modules) == 0 {
		issues = append(issues, "manifest declares no modules (at least one is required)")
	}

	moduleNames := make(map[string]int, len(manifest.Modules))
	for index, module := range manifest.Modules {
		prefix := fmt.Sprintf("modules[%d]", index)

		if _, err := validate.Name(module.Name, "name"); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		} else if firstIndex, exists := moduleNames[module.Name]; exists {
			issues = append(issues, fmt.Sprintf(
				"%s %q: duplicate module name (first used at modules[%d])",
				prefix, module.Name, firstIndex,
			))
		} else {
			moduleNames[module.Name] = index
		}

		if len(module.Methods) == 0 {
			issues = append(issues, fmt.Sprintf("%s %q: no methods declared", prefix, module.Name))
		}

		// Sorted so issue order is stable across runs.
		methodNames := make([]string, 0, len(module.Methods))
		for name := range module.Methods {
			methodNames = append(methodNames, name)
		}
		sort.Strings(methodNames)

		for _, methodName := range methodNames {
			methodPrefix := fmt.Sprintf("%s %q method %q", prefix, module.Name, methodName)
			issues = append(issues, validateMethod(methodName, module.Methods[methodName], methodPrefix)...)
		}
	}

	return issues
}

func validateMethod(name string, method MethodSpec, prefix string) []string {
	var issues []string

	if _, err := validate.Name(name, "method name"); err != nil {
		issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
	}

	if _, err := validate.Channel(method.Channel); err != nil {
		issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
	}

	for index, param := range method.Params {
		if _, err := validate.ParseKind(param.Kind); err != nil {
			issues = append(issues, fmt.Sprintf("%s params[%d]: %v", prefix, index, err))
		}
	}

	if method.Options != nil {
		if method.Options.Timeout != "" {
			timeout, err := time.ParseDuration(method.Options.Timeout)
			if err != nil {
				issues = append(issues, fmt.Sprintf("%s: invalid options.timeout %q: %v", prefix, method.Options.Timeout, err))
			} else if timeout <= 0 {
				issues = append(issues, fmt.Sprintf("%s: options.timeout must be positive, got %s", prefix, method.Options.Timeout))
			}
		}
		if method.Options.RetryCount != nil && *method.Options.RetryCount < 0 {
			issues = append(issues, fmt.Sprintf("%s: options.retryCount must be non-negative, got %d", prefix, *method.Options.RetryCount))
		}
	}

	return issues
}
