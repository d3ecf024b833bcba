package upgrade

// Data migration hooks are registered here.
// Add new hooks when a schema migration requires Go-based data transformation.
//
// Example:
//
//	func init() {
//		RegisterDataHook(4, "004_backfill_ghost_usage_stats", func(ctx context.Context, db *sql.DB) error {
//			// transform data after migration 000004 is applied
//			return nil
//		})
//	}
