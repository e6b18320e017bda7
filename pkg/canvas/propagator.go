package canvas

import "github.com/chatoptimize/chatgraph/pkg/models"

// Propagate pushes a computed value into every downstream widget wired to
// the given output slot. Delivery is best-effort: consumers whose node,
// slot, or named widget cannot be resolved are skipped, and one bad
// consumer never blocks the rest. The source node itself is never touched.
func (cv *Canvas) Propagate(node *models.Node, outputSlot int, value any) {
	for _, target := range cv.acc.TargetsOf(node, outputSlot) {
		if target.Input.Widget == "" {
			continue
		}

		w, ok := target.Node.Widget(target.Input.Widget)
		if !ok {
			cv.logger.Debug("propagation target widget missing",
				"source_id", node.ID, "target_id", target.Node.ID, "widget", target.Input.Widget)

			continue
		}

		w.SetValue(value)
		target.Node.MarkDirty()
	}
}
