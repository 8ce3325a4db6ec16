package sessionprobe

import "fmt"

// verifySelection checks the state the service reports and the cluster
// invariants: both clusters sorted, no index in both.
func verifySelection(sel Selection, wantState string) error {
	if sel.State != wantState {
		return fmt.Errorf("selection state %q, want %q", sel.State, wantState)
	}
	if err := verifySorted(sel.ClusterA, "cluster_a"); err != nil {
		return err
	}
	if err := verifySorted(sel.ClusterB, "cluster_b"); err != nil {
		return err
	}

	inA := make(map[int]struct{}, len(sel.ClusterA))
	for _, i := range sel.ClusterA {
		inA[i] = struct{}{}
	}
	for _, i := range sel.ClusterB {
		if _, ok := inA[i]; ok {
			return fmt.Errorf("index %d present in both clusters", i)
		}
	}
	return nil
}

func verifySorted(indices []int, name string) error {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return fmt.Errorf("%s not strictly ascending at position %d", name, i)
		}
	}
	return nil
}

// verifyCells checks the rendered cells against the session's grid shape.
func verifyCells(resp CellsResponse, summary InitSummary) error {
	want := summary.Rows * summary.Cols
	if len(resp.Cells) != want {
		return fmt.Errorf("got %d cells, want %d", len(resp.Cells), want)
	}
	for i, c := range resp.Cells {
		if c.Size < 0 {
			return fmt.Errorf("cell %d has negative size %f", i, c.Size)
		}
		switch c.Color {
		case "neutral", "cluster_a", "cluster_b":
		default:
			return fmt.Errorf("cell %d has unknown color %q", i, c.Color)
		}
	}
	return nil
}
