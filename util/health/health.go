package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Check is one named dependency probe. The function follows the Health signature every coin store
// implements: an HTTP status code, a human readable detail and an error.
type Check struct {
	Name  string
	Check func(context.Context, bool) (int, string, error)
}

// CheckAll runs every check and folds the results into one status and a JSON detail document. The
// overall status is 503 as soon as any check fails.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	var (
		overallStatus = http.StatusOK
		messages      = make([]string, 0, len(checks))
	)

	for _, check := range checks {
		status, message, err := check.Check(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		var msg string

		if len(message) > 0 && message[0] == '{' && message[len(message)-1] == '}' {
			msg = fmt.Sprintf(`{"resource": "%s", "status": "%d", "error": "%v", "dependencies": [%s]}`, check.Name, status, err, message)
		} else {
			msg = fmt.Sprintf(`{"resource": "%s", "status": "%d", "error": "%v", "message": "%s"}`, check.Name, status, err, message)
		}

		messages = append(messages, msg)
	}

	return overallStatus, fmt.Sprintf(`{"status":"%d", "dependencies":[%s]}`, overallStatus, strings.Join(messages, ",\n")), nil
}
