package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackjudge/internal/utils"
)

// JudgeScopeOptions configures WithJudgeScope.
type JudgeScopeOptions struct {
	// QueryKey names the query parameter carrying the requested judge id.
	QueryKey string
}

// WithJudgeScope rejects requests whose token judge differs from the judge id
// named in the query. Anonymous requests are passed through unchanged.
func WithJudgeScope(handler fiber.Handler, opts JudgeScopeOptions) fiber.Handler {
	key := opts.QueryKey
	if key == "" {
		key = "judge_id"
	}

	return func(c *fiber.Ctx) error {
		identity := JudgeIDFromLocals(c)
		if identity == "" {
			return handler(c)
		}

		requested := strings.TrimSpace(c.Query(key))
		if requested != "" && requested != identity {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return handler(c)
	}
}
