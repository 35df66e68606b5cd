package cli

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/existflow/chantier/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// resolveProject finds a project by id, by name ignoring case, by a unique
// name fragment, and finally suggests the closest name.
func resolveProject(projects []model.Project, arg string) (model.Project, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return model.Project{}, fmt.Errorf("no project given and no context set")
	}

	for _, p := range projects {
		if p.ID == arg {
			return p, nil
		}
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, arg) {
			return p, nil
		}
	}

	needle := strings.ToLower(arg)
	var partial []model.Project
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			partial = append(partial, p)
		}
	}
	if len(partial) == 1 {
		return partial[0], nil
	}
	if len(partial) > 1 {
		names := make([]string, len(partial))
		for i, p := range partial {
			names[i] = p.Name
		}
		return model.Project{}, fmt.Errorf("%q matches several projects: %s", arg, strings.Join(names, ", "))
	}

	if best, ok := closestName(projects, needle); ok {
		return model.Project{}, fmt.Errorf("project %q not found, did you mean %q?", arg, best)
	}
	return model.Project{}, fmt.Errorf("project %q not found", arg)
}

// closestName returns the project name nearest to needle by edit distance,
// within a third of its length.
func closestName(projects []model.Project, needle string) (string, bool) {
	best, bestDist := "", -1
	for _, p := range projects {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(p.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = p.Name, d
		}
	}
	limit := len([]rune(needle)) / 3
	if limit < 2 {
		limit = 2
	}
	return best, bestDist >= 0 && bestDist <= limit
}

type identified interface {
	GetID() string
}

// findByID matches an id exactly or by a unique prefix.
func findByID[T identified](items []T, arg, kind string) (T, error) {
	var zero T
	for _, it := range items {
		if it.GetID() == arg {
			return it, nil
		}
	}

	var found []T
	for _, it := range items {
		if arg != "" && strings.HasPrefix(it.GetID(), arg) {
			found = append(found, it)
		}
	}
	switch len(found) {
	case 0:
		return zero, fmt.Errorf("%s not found: %s", kind, arg)
	case 1:
		return found[0], nil
	}
	return zero, fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, arg, len(found))
}

// changedFlag returns a string flag's value when it was set on the command
// line, so that edits leave unset fields alone.
func changedFlag(cmd *cobra.Command, name string) (string, bool) {
	if !cmd.Flags().Changed(name) {
		return "", false
	}
	v, err := cmd.Flags().GetString(name)
	return v, err == nil
}

// parseLine reads a quote line written "designation;quantity;unit price".
// The designation may itself contain semicolons.
func parseLine(s string) (model.LineItem, error) {
	parts := strings.Split(s, ";")
	if len(parts) < 3 {
		return model.LineItem{}, fmt.Errorf("line %q: want \"designation;quantity;price\"", s)
	}
	n := len(parts)
	designation := strings.TrimSpace(strings.Join(parts[:n-2], ";"))
	if designation == "" {
		return model.LineItem{}, fmt.Errorf("line %q: designation is empty", s)
	}

	qty, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(parts[n-2]), ",", "."))
	if err != nil {
		return model.LineItem{}, fmt.Errorf("line %q: invalid quantity: %w", s, err)
	}
	price, err := model.ParseMoney(parts[n-1])
	if err != nil {
		return model.LineItem{}, fmt.Errorf("line %q: invalid price: %w", s, err)
	}

	return model.LineItem{
		ID:          uuid.New().String()[:8],
		Designation: designation,
		Quantity:    qty,
		UnitPrice:   price,
	}, nil
}

var accents = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a", "ç", "c", "é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i", "ô", "o", "ö", "o", "ù", "u", "û", "u", "ü", "u", "œ", "oe", "æ", "ae",
)

// slugID derives a readable id from a name, falling back to a short uuid when
// the slug is empty or taken.
func slugID(name string, taken func(id string) bool) string {
	var b strings.Builder
	dash := false
	for _, r := range accents.Replace(strings.ToLower(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	id := strings.TrimRight(b.String(), "-")
	if id == "" || taken(id) {
		id = uuid.New().String()[:8]
	}
	return id
}
