// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "phoneplan-workers/internal/common/errors"
	"phoneplan-workers/pkg/registry"

	acs "phoneplan-workers/internal/workers/auth/auth-check-session"
	ali "phoneplan-workers/internal/workers/auth/auth-login"
	alo "phoneplan-workers/internal/workers/auth/auth-logout"
	mp "phoneplan-workers/internal/workers/plans/manage-plan"
	qp "phoneplan-workers/internal/workers/plans/query-plans"
	rp "phoneplan-workers/internal/workers/plans/recommend-plans"
	cas "phoneplan-workers/internal/workers/subscriptions/cancel-subscription"
	crs "phoneplan-workers/internal/workers/subscriptions/create-subscription"
	qs "phoneplan-workers/internal/workers/subscriptions/query-subscriptions"
	ups "phoneplan-workers/internal/workers/subscriptions/update-subscription"
	mu "phoneplan-workers/internal/workers/users/manage-user"
)

const registryVersion = "1.0.0"

var registryPath string

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	generateCmd.StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateCmd.StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		reg, err := buildRegistry()
		if err != nil {
			fmt.Printf("Error building registry: %v\n", err)
			os.Exit(1)
		}
		if err := registry.SaveRegistry(reg, registryPath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), registryPath)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

type activityDef struct {
	registry.Activity
	schema  interface{}
	timeout time.Duration
}

func codes(cs ...apperrors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

var (
	tokenCodes = []apperrors.ErrorCode{apperrors.ErrCodeTokenInvalid, apperrors.ErrCodeInvalidInput}
	dbCodes    = []apperrors.ErrorCode{apperrors.ErrCodeQueryExecutionFailed, apperrors.ErrCodeQueryTimeout}
)

func join(groups ...[]apperrors.ErrorCode) []apperrors.ErrorCode {
	var out []apperrors.ErrorCode
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func activities() []activityDef {
	return []activityDef{
		{
			Activity: registry.Activity{
				ID: rp.TaskType, DisplayName: "Recommend Plans", Category: "plans", TaskType: rp.TaskType,
				Description: "Ranks the plan catalog against the caller's preferences and returns the best plans",
				ErrorCodes: codes(join([]apperrors.ErrorCode{
					apperrors.ErrCodePlanCatalogEmpty, apperrors.ErrCodeRecommendationFailed,
					apperrors.ErrCodePlanValidationFailed, apperrors.ErrCodeInvalidInput,
				}, dbCodes)...),
			},
			schema: rp.GetInputSchema(), timeout: rp.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: qp.TaskType, DisplayName: "Query Plans", Category: "plans", TaskType: qp.TaskType,
				Description: "Returns one plan by id or the plans of a carrier",
				ErrorCodes: codes(join([]apperrors.ErrorCode{
					apperrors.ErrCodePlanNotFound, apperrors.ErrCodeInvalidInput,
				}, dbCodes)...),
			},
			schema: qp.GetInputSchema(), timeout: qp.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: mp.TaskType, DisplayName: "Manage Plan", Category: "plans", TaskType: mp.TaskType,
				Description:   "Creates, updates or deletes a catalog plan",
				Authenticated: true, AdminOnly: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodePlanNotFound, apperrors.ErrCodePlanValidationFailed,
				}, dbCodes)...),
			},
			schema: mp.GetInputSchema(), timeout: mp.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: crs.TaskType, DisplayName: "Create Subscription", Category: "subscriptions", TaskType: crs.TaskType,
				Description:   "Subscribes a phone number to a plan and sends the confirmations",
				Authenticated: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodeSubscriptionDuplicate,
					apperrors.ErrCodeSubscriptionReferenceInvalid,
				}, dbCodes)...),
			},
			schema: crs.GetInputSchema(), timeout: crs.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: qs.TaskType, DisplayName: "Query Subscriptions", Category: "subscriptions", TaskType: qs.TaskType,
				Description:   "Lists the caller's subscriptions, or any subscriptions for admins",
				Authenticated: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodeSubscriptionNotFound,
				}, dbCodes)...),
			},
			schema: qs.GetInputSchema(), timeout: qs.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: cas.TaskType, DisplayName: "Cancel Subscription", Category: "subscriptions", TaskType: cas.TaskType,
				Description:   "Deletes a subscription owned by the caller",
				Authenticated: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodeSubscriptionNotFound,
				}, dbCodes)...),
			},
			schema: cas.GetInputSchema(), timeout: cas.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: ups.TaskType, DisplayName: "Update Subscription", Category: "subscriptions", TaskType: ups.TaskType,
				Description:   "Moves a subscription to another user, plan or phone number",
				Authenticated: true, AdminOnly: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodeSubscriptionNotFound,
					apperrors.ErrCodeSubscriptionDuplicate, apperrors.ErrCodeSubscriptionReferenceInvalid,
				}, dbCodes)...),
			},
			schema: ups.GetInputSchema(), timeout: ups.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: mu.TaskType, DisplayName: "Manage User", Category: "users", TaskType: mu.TaskType,
				Description:   "Lists, reads, creates, updates or deletes registered users",
				Authenticated: true, AdminOnly: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeAccessDenied, apperrors.ErrCodeUserNotFound,
					apperrors.ErrCodeUserDuplicate, apperrors.ErrCodeUserValidationFailed,
				}, dbCodes)...),
			},
			schema: mu.GetInputSchema(), timeout: mu.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: ali.TaskType, DisplayName: "Login", Category: "auth", TaskType: ali.TaskType,
				Description: "Checks credentials and issues a bearer token",
				ErrorCodes: codes(join([]apperrors.ErrorCode{
					apperrors.ErrCodeAuthenticationFailed, apperrors.ErrCodeInvalidInput,
				}, dbCodes)...),
			},
			schema: ali.GetInputSchema(), timeout: ali.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: alo.TaskType, DisplayName: "Logout", Category: "auth", TaskType: alo.TaskType,
				Description:   "Revokes the caller's token",
				Authenticated: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeDatabaseConnectionFailed,
				})...),
			},
			schema: alo.GetInputSchema(), timeout: alo.DefaultConfig().Timeout,
		},
		{
			Activity: registry.Activity{
				ID: acs.TaskType, DisplayName: "Check Session", Category: "auth", TaskType: acs.TaskType,
				Description:   "Returns the identity behind a bearer token",
				Authenticated: true,
				ErrorCodes: codes(join(tokenCodes, []apperrors.ErrorCode{
					apperrors.ErrCodeDatabaseConnectionFailed,
				})...),
			},
			schema: acs.GetInputSchema(), timeout: acs.DefaultConfig().Timeout,
		},
	}
}

func buildRegistry() (*registry.ActivityRegistry, error) {
	reg := &registry.ActivityRegistry{
		Version:     registryVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
	for _, def := range activities() {
		schema, err := registry.SchemaMap(def.schema)
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", def.ID, err)
		}
		a := def.Activity
		a.InputSchema = schema
		a.Timeout = def.timeout.String()
		for _, c := range a.ErrorCodes {
			if r := apperrors.GetRetryCount(apperrors.ErrorCode(c)); r > a.Retries {
				a.Retries = r
			}
		}
		reg.Activities = append(reg.Activities, a)
	}
	return reg, reg.Validate()
}

// validateRegistry checks the file and that it lists exactly the task types
// served by the worker manager.
func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	want, err := buildRegistry()
	if err != nil {
		return err
	}
	missing, extra := reg.Diff(want)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("registry out of date: missing [%s], unknown [%s]",
			strings.Join(missing, ", "), strings.Join(extra, ", "))
	}

	fmt.Printf("Found %d activities.\n", len(reg.Activities))
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Write the activity registry from the worker definitions
  validate  Validate the registry file against the worker definitions
  help      Show this help message

Examples:
  registry-updater generate -path configs/activity-registry.json
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
