package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/chantier/internal/finance"
	"github.com/existflow/chantier/internal/model"
)

const (
	sidebarWidth = 28
	// Lines above and below the table in the main pane
	tableReserve = 20
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var mainContent string
	switch {
	case m.status.Loading:
		mainContent = m.placeCenter(TitleStyle.Render("Chargement des données..."))
	case m.status.Err != nil:
		mainContent = m.placeCenter(m.renderLoadError())
	case m.mode == ModeHelp:
		mainContent = m.renderHelp()
	default:
		body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), m.renderDetail())
		mainContent = lipgloss.JoinVertical(lipgloss.Left, m.renderOverview(), body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) placeCenter(s string) string {
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, s,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) renderLoadError() string {
	content := ErrorStyle.Render("Impossible de charger les données") + "\n\n"
	content += m.status.Err.Error() + "\n\n"
	content += HelpStyle.Render("r:réessayer  q:quitter")
	return ModalStyle.Render(content)
}

// renderOverview is the one-line portfolio header
func (m Model) renderOverview() string {
	o := m.overview
	parts := []string{
		TitleStyle.Render("Chantier"),
		fmt.Sprintf("%d chantiers (%d en cours)", o.Projects, o.ActiveProjects),
		"Budget " + model.FormatEUR(o.TotalBudget),
		fmt.Sprintf("Encaissé %s (%s%%)", model.FormatEUR(o.Collected), o.CollectedPercent.StringFixed(1)),
		"Dépenses " + model.FormatEUR(o.Spent),
		fmt.Sprintf("%d devis en attente", o.PendingQuotes),
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, HelpStyle.Render("  │  ")))
}

func (m Model) renderSidebar() string {
	var s string

	s += TitleStyle.Render("Chantiers") + "\n"
	filter := "filtre: " + filterLabel(statusFilters[m.statusFilter])
	if m.searchText != "" {
		filter += fmt.Sprintf(" · %q", m.searchText)
	}
	s += HelpStyle.Render(truncate(filter, sidebarWidth-4)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4)) + "\n\n"

	if len(m.projects) == 0 {
		s += HelpStyle.Render("Aucun chantier")
	}

	for i, p := range m.projects {
		cursor := "  "
		style := ProjectItemStyle
		if i == m.projCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = ProjectItemSelectedStyle
			}
		}
		dot := lipgloss.NewStyle().Foreground(StatusColor(p.Status)).Render("●")
		s += cursor + dot + style.Render(truncate(p.Name, sidebarWidth-9)) + "\n"
	}

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 3).Render(s)
}

func (m Model) renderDetail() string {
	width := m.width - sidebarWidth - 2
	p := m.currentProject()
	if p == nil {
		return DetailStyle.Width(width).Render(HelpStyle.Render("Aucun chantier sélectionné"))
	}
	s := m.currentSummary()

	var b strings.Builder
	b.WriteString(TitleStyle.Render(p.Name) + "  " + FormatStatus(p.Status) + "\n")
	b.WriteString(HelpStyle.Render(projectLine(*p)) + "\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Devis acceptés TTC", CardValueStyle.Render(model.FormatEUR(s.CommittedRevenue))),
		card("Encaissé", CardValueStyle.Render(model.FormatEUR(s.Collected))),
		card("Dépenses", CardValueStyle.Render(model.FormatEUR(s.Spent))),
	) + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Bénéfice net", amountStyle(s.NetProfit).Render(model.FormatEUR(s.NetProfit))),
		card("Reste à encaisser", CardValueStyle.Render(model.FormatEUR(s.OutstandingBalance))),
		card("Marge", amountStyle(s.NetProfit).Render(s.MarginPercent.StringFixed(2)+" %")),
	) + "\n")
	b.WriteString(HelpStyle.Render(budgetLine(s)) + "\n\n")

	b.WriteString(m.renderTabs() + "\n")
	if len(m.table.Rows()) == 0 {
		b.WriteString(HelpStyle.Render("  Rien à afficher"))
	} else {
		b.WriteString(m.table.View())
	}

	return DetailStyle.Width(width).Render(b.String())
}

func card(label, value string) string {
	return CardStyle.Render(CardLabelStyle.Render(label) + "\n" + value)
}

func projectLine(p model.Project) string {
	parts := []string{}
	if p.Client != "" {
		parts = append(parts, p.Client)
	}
	if p.Location != "" {
		parts = append(parts, p.Location)
	}
	dates := "depuis le " + p.StartDate.French()
	if p.EndDate != nil && !p.EndDate.IsZero() {
		dates = fmt.Sprintf("du %s au %s", p.StartDate.French(), p.EndDate.French())
	}
	return strings.Join(append(parts, dates), " · ")
}

func budgetLine(s finance.Summary) string {
	if s.Budget <= 0 {
		return "Pas de budget prévu"
	}
	return fmt.Sprintf("Budget %s, %s%% consommé", model.FormatEUR(s.Budget), s.BudgetUsedPercent.StringFixed(1))
}

func (m Model) renderTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		style := TabStyle
		if Tab(i) == m.tab {
			style = TabActiveStyle
		}
		tabs = append(tabs, style.Render(title))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatusBar() string {
	// When in search mode, show the inline input (like vim)
	if m.mode == ModeSearch {
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View() +
			fmt.Sprintf(" [%d]", len(m.projects)))
	}

	help := "↑↓:naviguer  ←→:panneau  tab:tableau  /:recherche  s:statut  e:export  r:actualiser  ?:aide  q:quitter"
	if m.message != "" {
		help = m.message
	}

	// Refresh state (right aligned)
	state := fmt.Sprintf("[%s]", m.store.Mode())
	switch {
	case m.refresher.IsPending():
		state = "Actualisation... " + state
	case m.refresher.LastError() != nil:
		state = ErrorStyle.Render("Erreur d'actualisation") + " " + state
	case !m.refresher.LastLoad().IsZero():
		state = "màj " + m.refresher.LastLoad().Format("15:04:05") + " " + state
	}

	avail := m.width - lipgloss.Width(help) - lipgloss.Width(state) - 2
	if avail > 0 {
		help += strings.Repeat(" ", avail) + state
	} else {
		help += " " + state
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭─── Raccourcis clavier ────────╮
│                               │
│  Navigation                   │
│  ──────────                   │
│  j/↓      Descendre           │
│  k/↑      Monter              │
│  h/←      Liste des chantiers │
│  l/→      Détails             │
│  Tab      Tableau suivant     │
│                               │
│  Actions                      │
│  ───────                      │
│  /        Rechercher          │
│  s        Filtrer par statut  │
│  e        Exporter en PDF     │
│  r        Actualiser          │
│                               │
│  Autres                       │
│  ──────                       │
│  ?        Aide                │
│  q        Quitter             │
│                               │
╰───────────────────────────────╯

     Appuyez sur une touche pour fermer
`
	return m.placeCenter(help)
}
