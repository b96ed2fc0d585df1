package models

import "testing"

func TestGetPreparationPhase(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		wantPhase string
		wantColor string
	}{
		{
			name:      "no parts no car no schedule",
			job:       prepJob(nil),
			wantPhase: "arrange_dropoff",
			wantColor: "purple",
		},
		{
			name: "nothing ordered",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{{Type: "Replace", Desc: "Grille"}}
			}),
			wantPhase: "order_parts",
			wantColor: "red",
		},
		{
			name: "partially ordered",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{
					{Type: "Replace", Desc: "Grille", Ordered: true},
					{Type: "Replace", Desc: "Front Bumper Cover"},
				}
			}),
			wantPhase: "order_parts_partial",
			wantColor: "orange",
		},
		{
			name: "ordered waiting arrival",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{{Type: "Replace", Desc: "Grille", Ordered: true}}
			}),
			wantPhase: "waiting_parts",
			wantColor: "yellow",
		},
		{
			name: "partially arrived",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{
					{Type: "Replace", Desc: "Grille", Ordered: true, Arrived: true},
					{Type: "Replace", Desc: "Front Bumper Cover", Ordered: true},
				}
			}),
			wantPhase: "waiting_parts_partial",
			wantColor: "yellow",
		},
		{
			name: "procurement outranks car presence",
			job: prepJob(func(j *Job) {
				j.CarHere = true
				j.Items = ItemList{{Type: "Replace", Desc: "Grille"}}
			}),
			wantPhase: "order_parts",
			wantColor: "red",
		},
		{
			name: "parts done and car on site",
			job: prepJob(func(j *Job) {
				j.CarHere = true
				j.Items = ItemList{{Type: "Replace", Desc: "Grille", Ordered: true, Arrived: true}}
			}),
			wantPhase: "ready_start",
			wantColor: "green",
		},
		{
			name: "job level flags count as all parts",
			job: prepJob(func(j *Job) {
				j.CarHere = true
				j.PartsOrdered = true
				j.PartsArrived = true
				j.Items = ItemList{{Type: "Replace", Desc: "Grille"}}
			}),
			wantPhase: "ready_start",
			wantColor: "green",
		},
		{
			name: "parts done schedule set waiting for car",
			job: prepJob(func(j *Job) {
				j.StartDate = "2026-09-01"
				j.EndDate = "2026-09-05"
				j.Items = ItemList{{Type: "Replace", Desc: "Grille", Ordered: true, Arrived: true}}
			}),
			wantPhase: "waiting_dropoff",
			wantColor: "blue",
		},
		{
			name: "parts done but nothing scheduled",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{{Type: "Replace", Desc: "Grille", Ordered: true, Arrived: true}}
			}),
			wantPhase: "arrange_dropoff",
			wantColor: "purple",
		},
		{
			name: "repair only items never wait on parts",
			job: prepJob(func(j *Job) {
				j.Items = ItemList{{Type: "Repair", Desc: "Hood"}}
			}),
			wantPhase: "arrange_dropoff",
			wantColor: "purple",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetPreparationPhase(tt.job)
			if got.Phase != tt.wantPhase {
				t.Errorf("phase = %q, want %q", got.Phase, tt.wantPhase)
			}
			if got.Color != tt.wantColor {
				t.Errorf("color = %q, want %q", got.Color, tt.wantColor)
			}
		})
	}
}
