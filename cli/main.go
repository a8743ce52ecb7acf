package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

var strategies = []string{"best", "random", "hybrid"}

// Model defines the application state
type Model struct {
	mainMenu      list.Model
	mealList      list.Model
	recommendList list.Model
	analyticsView table.Model
	mealDetail    Meal
	textInput     textinput.Model
	spinner       spinner.Model
	client        *ApiClient
	report        *Report
	strategyIdx   int
	currentView   string
	status        string
	error         string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Browse Menu", desc: "View meals, rate them, pick what you ate"},
		item{title: "Recommendations", desc: "Get meal recommendations by strategy"},
		item{title: "Suggest by Flavor", desc: "Find a meal matching a flavor"},
		item{title: "Analytics", desc: "View menu analytics"},
		item{title: "Save State", desc: "Snapshot catalog and preferences to disk"},
		item{title: "Exit", desc: "Exit the application"},
	}

	// Initialize main menu
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "WhatsToEat CLI"

	// Initialize meal list view
	mealList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	mealList.Title = "Menu"

	// Initialize recommendations view
	recommendList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	recommendList.Title = "Recommendations"

	// Initialize analytics view
	columns := []table.Column{
		{Title: "Meal", Width: 28},
		{Title: "Avg Rating", Width: 12},
	}
	analyticsTable := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(7),
	)

	// Initialize text input
	ti := textinput.New()
	ti.Placeholder = "Enter a flavor (e.g. spicy)..."
	ti.CharLimit = 64
	ti.Width = 30

	// Initialize API client
	client := NewApiClient()

	return Model{
		mainMenu:      mainMenu,
		mealList:      mealList,
		recommendList: recommendList,
		analyticsView: analyticsTable,
		spinner:       s,
		textInput:     ti,
		client:        client,
		currentView:   "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "suggest" {
				return m, tea.Quit
			}
		case "enter":
			if m.currentView == "main" {
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					m.error = ""
					m.status = ""
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Browse Menu":
						m.currentView = "menu"
						return m, fetchMeals(m.client)
					case "Recommendations":
						m.currentView = "recommend"
						return m, fetchRecommendations(m.client, strategies[m.strategyIdx])
					case "Suggest by Flavor":
						m.currentView = "suggest"
						m.textInput.SetValue("")
						m.textInput.Focus()
					case "Analytics":
						m.currentView = "analytics"
						return m, fetchAnalytics(m.client)
					case "Save State":
						return m, saveState(m.client)
					}
				}
			} else if m.currentView == "menu" {
				if selected, ok := m.mealList.SelectedItem().(mealItem); ok {
					m.currentView = "meal_detail"
					m.mealDetail = selected.meal
					m.status = ""
					m.error = ""
				}
			} else if m.currentView == "meal_detail" {
				m.currentView = "menu"
				return m, fetchMeals(m.client)
			} else if m.currentView == "suggest" && m.textInput.Focused() {
				flavor := m.textInput.Value()
				if flavor == "" {
					m.error = "Please enter a flavor"
					return m, nil
				}
				return m, suggestMeal(m.client, flavor)
			}
		case "esc":
			if m.currentView == "meal_detail" {
				m.currentView = "menu"
				return m, fetchMeals(m.client)
			} else if m.currentView != "main" {
				m.currentView = "main"
				m.error = ""
				m.status = ""
			}
		case "1", "2", "3", "4", "5":
			if m.currentView == "meal_detail" {
				rating, _ := strconv.Atoi(msg.String())
				return m, rateMeal(m.client, m.mealDetail.ID, rating)
			}
		case "a":
			if m.currentView == "meal_detail" {
				return m, addToHistory(m.client, m.mealDetail.ID)
			}
		case "s":
			if m.currentView == "recommend" {
				m.strategyIdx = (m.strategyIdx + 1) % len(strategies)
				return m, fetchRecommendations(m.client, strategies[m.strategyIdx])
			}
		case "r":
			if m.currentView == "recommend" {
				return m, fetchRecommendations(m.client, strategies[m.strategyIdx])
			}
		}
	case mealsMsg:
		m.mealList.SetItems(convertMealsToItems(msg.meals))
		return m, nil
	case recommendationsMsg:
		m.recommendList.SetItems(convertMealsToItems(msg.meals))
		return m, nil
	case suggestionMsg:
		m.currentView = "meal_detail"
		m.mealDetail = msg.meal
		m.error = ""
		return m, nil
	case analyticsMsg:
		m.report = &msg.report
		rows := make([]table.Row, len(msg.report.TopRated))
		for i, r := range msg.report.TopRated {
			rows[i] = table.Row{r.Name, fmt.Sprintf("%.2f", r.AvgRating)}
		}
		m.analyticsView.SetRows(rows)
		return m, nil
	case errorMsg:
		m.error = msg.err
		return m, nil
	case confirmMsg:
		m.error = ""
		m.status = msg.message
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "menu":
		m.mealList, cmd = m.mealList.Update(msg)
	case "recommend":
		m.recommendList, cmd = m.recommendList.Update(msg)
	case "analytics":
		m.analyticsView, cmd = m.analyticsView.Update(msg)
	case "suggest":
		m.textInput, cmd = m.textInput.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		view := docStyle.Render(m.mainMenu.View())
		if m.status != "" {
			view += "\n" + successStyle.Render(m.status)
		}
		if m.error != "" {
			view += "\n" + errorStyle.Render(m.error)
		}
		return view
	case "menu":
		help := "\nPress 'enter' to view a meal, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Menu") + "\n\n" + m.mealList.View() + help)
	case "meal_detail":
		return docStyle.Render(mealDetailView(m.mealDetail, m.status, m.error))
	case "recommend":
		help := fmt.Sprintf("\nStrategy: %s — press 's' to switch, 'r' to refresh, 'esc' to go back\n",
			infoStyle.Render(strategies[m.strategyIdx]))
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Recommendations") + "\n\n" + m.recommendList.View() + help)
	case "suggest":
		help := "\nPress 'enter' to get a suggestion, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Suggest by Flavor") + "\n\n" + m.textInput.View() + "\n" + help)
	case "analytics":
		return docStyle.Render(analyticsView(m.report, m.analyticsView, m.error))
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type mealsMsg struct {
	meals []Meal
}

type recommendationsMsg struct {
	meals []Meal
}

type suggestionMsg struct {
	meal Meal
}

type analyticsMsg struct {
	report Report
}

type errorMsg struct {
	err string
}

type confirmMsg struct {
	message string
}

// mealItem represents a meal in a list
type mealItem struct {
	meal Meal
}

func (i mealItem) Title() string { return fmt.Sprintf("%s ($%.2f)", i.meal.Name, i.meal.Price) }
func (i mealItem) Description() string {
	desc := fmt.Sprintf("%s, %s, %d cal", i.meal.Diet, i.meal.Flavor, i.meal.Calories)
	if avg := i.meal.AverageRating(); avg > 0 {
		desc += fmt.Sprintf(" — rated %.1f", avg)
	}
	return desc
}
func (i mealItem) FilterValue() string { return i.meal.Name }

// fetchMeals retrieves the menu from the API
func fetchMeals(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		meals, err := client.GetMeals()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching meals: %v", err)}
		}
		return mealsMsg{meals: meals}
	}
}

// fetchRecommendations retrieves recommendations under the given strategy
func fetchRecommendations(client *ApiClient, strategy string) tea.Cmd {
	return func() tea.Msg {
		meals, err := client.GetRecommendations(3, strategy)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching recommendations: %v", err)}
		}
		return recommendationsMsg{meals: meals}
	}
}

// suggestMeal asks the API for a meal matching a flavor
func suggestMeal(client *ApiClient, flavor string) tea.Cmd {
	return func() tea.Msg {
		meal, err := client.SuggestByFlavor(flavor, nil)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("No suggestion: %v", err)}
		}
		return suggestionMsg{meal: *meal}
	}
}

// rateMeal submits a rating for a meal
func rateMeal(client *ApiClient, id string, rating int) tea.Cmd {
	return func() tea.Msg {
		if err := client.RateMeal(id, rating); err != nil {
			return errorMsg{err: fmt.Sprintf("Error rating meal: %v", err)}
		}
		return confirmMsg{message: fmt.Sprintf("Rated %d stars", rating)}
	}
}

// addToHistory records the meal in the preference history
func addToHistory(client *ApiClient, id string) tea.Cmd {
	return func() tea.Msg {
		if err := client.AddToHistory(id); err != nil {
			return errorMsg{err: fmt.Sprintf("Error updating history: %v", err)}
		}
		return confirmMsg{message: "Added to history"}
	}
}

// fetchAnalytics retrieves the analytics report
func fetchAnalytics(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		report, err := client.GetAnalytics(5)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching analytics: %v", err)}
		}
		return analyticsMsg{report: *report}
	}
}

// saveState asks the server to snapshot its state
func saveState(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.SaveState(); err != nil {
			return errorMsg{err: fmt.Sprintf("Error saving state: %v", err)}
		}
		return confirmMsg{message: "State saved"}
	}
}

// convertMealsToItems converts API meals to list items
func convertMealsToItems(meals []Meal) []list.Item {
	items := make([]list.Item, len(meals))
	for i, meal := range meals {
		items[i] = mealItem{meal: meal}
	}
	return items
}

// mealDetailView creates a detailed view of a meal
func mealDetailView(meal Meal, status, errText string) string {
	view := titleStyle.Render(meal.Name) + "\n\n"
	view += fmt.Sprintf("Price: $%.2f\n", meal.Price)
	view += fmt.Sprintf("Calories: %d\n", meal.Calories)
	view += fmt.Sprintf("Diet: %s\n", meal.Diet)
	view += fmt.Sprintf("Flavor: %s\n", meal.Flavor)
	if avg := meal.AverageRating(); avg > 0 {
		view += fmt.Sprintf("Average Rating: %.2f (%d ratings)\n", avg, len(meal.Ratings))
	} else {
		view += "No ratings yet\n"
	}

	view += "\nPress '1'-'5' to rate, 'a' to mark as eaten, 'enter' to go back"
	if status != "" {
		view += "\n" + successStyle.Render(status)
	}
	if errText != "" {
		view += "\n" + errorStyle.Render(errText)
	}

	return view
}

// analyticsView renders the analytics report
func analyticsView(report *Report, t table.Model, errText string) string {
	view := titleStyle.Render("Analytics") + "\n\n"
	if report == nil {
		view += "Loading...\n"
		if errText != "" {
			view += errorStyle.Render(errText) + "\n"
		}
		return view
	}

	view += fmt.Sprintf("Total meals: %d\n", report.TotalMeals)
	view += fmt.Sprintf("Average price: $%.2f (min $%.2f, max $%.2f)\n\n", report.AvgPrice, report.MinPrice, report.MaxPrice)

	view += infoStyle.Render("Top Rated") + "\n"
	if len(report.TopRated) == 0 {
		view += "No rated meals yet\n"
	} else {
		view += t.View() + "\n"
	}

	view += "\nFlavors:\n"
	for flavor, count := range report.FlavorCounts {
		view += fmt.Sprintf("• %s: %d\n", flavor, count)
	}

	view += "\nPress 'esc' to go back"
	if errText != "" {
		view += "\n" + errorStyle.Render(errText)
	}

	return view
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
