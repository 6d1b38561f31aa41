package scheduler

// CellLoad is one ledger entry.
type CellLoad struct {
	Cell
	Hours int
}

// SlotLedger accumulates committed hours per grid cell across a whole run.
type SlotLedger struct {
	cells []Cell
	load  map[Cell]int
}

func NewSlotLedger(policy Policy) *SlotLedger {
	cells := policy.Cells()
	load := make(map[Cell]int, len(cells))
	for _, cell := range cells {
		load[cell] = 0
	}
	return &SlotLedger{cells: cells, load: load}
}

// LeastLoaded returns every cell tied at the minimum load, in grid order.
func (l *SlotLedger) LeastLoaded() []Cell {
	if len(l.cells) == 0 {
		return nil
	}
	min := l.load[l.cells[0]]
	for _, cell := range l.cells[1:] {
		if l.load[cell] < min {
			min = l.load[cell]
		}
	}
	result := make([]Cell, 0, len(l.cells))
	for _, cell := range l.cells {
		if l.load[cell] == min {
			result = append(result, cell)
		}
	}
	return result
}

func (l *SlotLedger) Credit(cell Cell, hours int) {
	if _, ok := l.load[cell]; !ok {
		return
	}
	l.load[cell] += hours
}

func (l *SlotLedger) Load(cell Cell) int {
	return l.load[cell]
}

func (l *SlotLedger) Snapshot() []CellLoad {
	snapshot := make([]CellLoad, 0, len(l.cells))
	for _, cell := range l.cells {
		snapshot = append(snapshot, CellLoad{Cell: cell, Hours: l.load[cell]})
	}
	return snapshot
}

func (l *SlotLedger) Total() int {
	total := 0
	for _, hours := range l.load {
		total += hours
	}
	return total
}
