// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"fmt"
	"strings"
)

// Panel identifies a market board by the code the site uses on the wire.
type Panel string

const (
	Bluechips                Panel = "accionesLideres"
	GeneralBoard             Panel = "panelGeneral"
	Cedears                  Panel = "cedears"
	GovernmentBonds          Panel = "rentaFija"
	ShortTermGovernmentBonds Panel = "letes"
	CorporateBonds           Panel = "obligaciones"
)

var panels = []Panel{
	Bluechips,
	GeneralBoard,
	Cedears,
	GovernmentBonds,
	ShortTermGovernmentBonds,
	CorporateBonds,
}

var groupNames = map[Panel]string{
	Bluechips:                "bluechips",
	GeneralBoard:             "general_board",
	Cedears:                  "cedears",
	GovernmentBonds:          "government_bonds",
	ShortTermGovernmentBonds: "short_term_government_bonds",
	CorporateBonds:           "corporate_bonds",
}

// Panels returns all known boards.
func Panels() []Panel {
	return append([]Panel(nil), panels...)
}

// GroupName returns the human readable board name for the panel.
func (p Panel) GroupName() string {
	return groupNames[p]
}

func (p Panel) String() string {
	return string(p)
}

// GroupName maps a board code as reported by the site to its readable group
// name. Unknown codes map to the empty string.
func GroupName(code string) string {
	return groupNames[Panel(code)]
}

// ParsePanel accepts either a board code or its group name.
func ParsePanel(v string) (Panel, error) {
	v = strings.TrimSpace(v)
	for _, p := range panels {
		if strings.EqualFold(v, string(p)) || strings.EqualFold(v, groupNames[p]) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown panel %q", v)
}
