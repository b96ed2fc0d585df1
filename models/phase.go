package models

// PreparationPhase is the derived sub-classification shown while a job sits
// in the Preparation stage. It is never stored; callers recompute it from the
// job's current fields whenever they need it.
type PreparationPhase struct {
	Phase string `json:"phase"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// GetPreparationPhase classifies a preparation stage job. Precedence matters:
// part procurement outranks car presence, which outranks scheduling. The
// job-level parts_ordered/parts_arrived flags act as "all items" overrides on
// top of the per-item flags.
func GetPreparationPhase(job *Job) PreparationPhase {
	parts := job.ReplaceItems()
	hasParts := len(parts) > 0
	hasSchedule := job.HasSchedule()

	if hasParts {
		orderedCount, arrivedCount := 0, 0
		for _, p := range parts {
			if p.Ordered {
				orderedCount++
			}
			if p.Arrived {
				arrivedCount++
			}
		}
		total := len(parts)

		allOrdered := orderedCount == total || job.PartsOrdered
		someOrdered := orderedCount > 0 && orderedCount < total
		allArrived := arrivedCount == total || job.PartsArrived
		someArrived := arrivedCount > 0 && arrivedCount < total

		if !allOrdered {
			if someOrdered {
				return PreparationPhase{Phase: "order_parts_partial", Label: "Order Parts: Partially Ordered", Color: "orange"}
			}
			return PreparationPhase{Phase: "order_parts", Label: "Order Parts", Color: "red"}
		}

		if !allArrived {
			if someArrived {
				return PreparationPhase{Phase: "waiting_parts_partial", Label: "Waiting for Parts: Partially Arrived", Color: "yellow"}
			}
			return PreparationPhase{Phase: "waiting_parts", Label: "Waiting for Parts", Color: "yellow"}
		}
	}

	// Car on site and nothing left to wait on: work can begin.
	if job.CarHere && job.AllPartsReady() {
		return PreparationPhase{Phase: "ready_start", Label: "Ready to Start", Color: "green"}
	}

	// Parts squared away but the car is still with the customer.
	if job.AllPartsReady() {
		if hasSchedule {
			return PreparationPhase{Phase: "waiting_dropoff", Label: "Waiting for Drop Off", Color: "blue"}
		}
		return PreparationPhase{Phase: "arrange_dropoff", Label: "Please Arrange Drop Off", Color: "purple"}
	}

	return PreparationPhase{Phase: "pending", Label: "Pending", Color: "gray"}
}
