package scenario

import (
	"context"
	"log/slog"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/generator"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

// Generate 在内存中生成主排班表，其他排班表按文件中的顺序参与冲突检查
func Generate(ctx context.Context, s *Scenario, parameters *scheduler.Parameters, logger *slog.Logger) (*generator.Outcome, *Store, error) {
	store := NewStore(s)

	opts := []generator.Option{}
	if logger != nil {
		opts = append(opts, generator.WithLogger(logger))
	}

	outcome, err := generator.New(store, parameters, opts...).Generate(ctx, generator.Request{
		RosterID:       MainRosterID,
		OtherRosterIDs: store.OtherRosterIDs(),
	})
	if err != nil {
		return nil, nil, err
	}
	return outcome, store, nil
}
