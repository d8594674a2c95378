package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"taskmind/models"
	"taskmind/version"

	"github.com/chzyer/readline"
)

// CLIHttp is the interactive shell that drives a running server over HTTP
type CLIHttp struct {
	rl      *readline.Instance
	out     io.Writer
	running bool
	client  *Client

	// last executed pair, the default target of "feedback"
	lastTask     string
	lastResponse string
}

// NewCLIHttp connects to serverURL and prepares the readline prompt
func NewCLIHttp(serverURL string) (*CLIHttp, error) {
	client := NewClient(serverURL)

	if _, err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:      rl,
		out:     rl.Stdout(),
		running: true,
		client:  client,
	}, nil
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("exec"),
	readline.PcItem("feedback", readline.PcItem("list")),
	readline.PcItem("history"),
	readline.PcItem("finetune", readline.PcItem("runs")),
	readline.PcItem("crawl"),
	readline.PcItem("health"),
	readline.PcItem("help"),
	readline.PcItem("clear"),
	readline.PcItem("exit"),
)

// Start runs the CLI loop until exit or EOF
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Fprintln(c.out, "\n⚠ Ctrl+C detected. Use 'exit' to quit.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

func (c *CLIHttp) printWelcome() {
	PrintBanner(c.out, "taskmind "+version.GetVersion()+" - CLI Mode (HTTP Client)")
	fmt.Fprintf(c.out, "\nConnected to: %s\n", c.client.baseURL)
	fmt.Fprintln(c.out, "Type 'help' for available commands")
}

// handleCommand routes one input line
func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "exec", "run", "x":
		c.execTask(rest)
	case "feedback", "fb":
		if rest == "list" || rest == "ls" {
			c.listFeedback()
			return
		}
		c.sendFeedback(rest)
	case "history", "hist":
		c.showHistory(parts[1:])
	case "finetune", "ft":
		if rest == "runs" {
			c.listRuns()
			return
		}
		c.startFineTune()
	case "crawl":
		c.crawl()
	case "health", "status", "st":
		c.showHealth()
	case "clear":
		fmt.Fprint(c.out, "\033[H\033[2J")
	case "exit", "quit", "q":
		fmt.Fprintln(c.out, "\nGoodbye!")
		c.running = false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

func (c *CLIHttp) showHelp() {
	fmt.Fprintln(c.out)
	PrintBanner(c.out, "Available Commands")
	fmt.Fprintln(c.out)

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"TASKS:", ""},
		{"exec <task>", "Run a task through the model"},
		{"feedback [text]", "Attach feedback to the last task (prompts when empty)"},
		{"feedback list", "Show recent feedback"},
		{"history [page] [size]", "Show served tasks, newest first"},
		{"", ""},
		{"MODEL:", ""},
		{"finetune", "Start a fine-tune run from collected feedback"},
		{"finetune runs", "List fine-tune runs"},
		{"crawl", "Crawl news sources into the knowledge store"},
		{"", ""},
		{"SYSTEM:", ""},
		{"health", "Show server health and active model"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if cmd[0] != "" {
			fmt.Fprintf(c.out, "  %-26s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *CLIHttp) execTask(task string) {
	if task == "" {
		task = c.readInput("Task", "")
	}
	if task == "" {
		fmt.Fprintln(c.out, "Usage: exec <task>")
		return
	}

	result, err := c.client.Execute(task)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	c.lastTask = task
	c.lastResponse = result
	fmt.Fprintf(c.out, "\n%s\n", result)
}

func (c *CLIHttp) sendFeedback(text string) {
	task, response := c.lastTask, c.lastResponse
	if task == "" {
		task = c.readInput("Task", "")
		response = c.readInput("Response", "")
	}
	if text == "" {
		text = c.readInput("Feedback", "")
	}
	if task == "" || text == "" {
		fmt.Fprintln(c.out, "Feedback needs a task and a text. Run 'exec <task>' first or fill in the prompts.")
		return
	}

	msg, err := c.client.SendFeedback(models.FeedbackCreate{Task: task, Response: response, Feedback: text})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ %s\n", msg)
}

func (c *CLIHttp) listFeedback() {
	rows, total, err := c.client.ListFeedback(20)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if total == 0 {
		fmt.Fprintln(c.out, "No feedback stored yet.")
		return
	}

	fmt.Fprintln(c.out)
	PrintBanner(c.out, fmt.Sprintf("Feedback: %d total", total))
	for _, f := range rows {
		fmt.Fprintf(c.out, "%-30s %s\n", truncate(f.Task, 30), truncate(f.Feedback, 45))
	}
}

func (c *CLIHttp) showHistory(args []string) {
	page, size := 1, 10
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			page = v
		}
	}
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			size = v
		}
	}

	history, err := c.client.History(page, size)
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(history) == 0 {
		fmt.Fprintln(c.out, "No history.")
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "%-30s %s\n", "Task", "Response")
	fmt.Fprintln(c.out, strings.Repeat("-", 78))
	for _, h := range history {
		fmt.Fprintf(c.out, "%-30s %s\n", truncate(h.Task, 30), truncate(h.Response, 47))
	}
}

func (c *CLIHttp) startFineTune() {
	run, err := c.client.StartFineTune()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ Fine-tune run %s started (%d examples, trainer %s)\n", run.ID, run.Examples, run.Trainer)
}

func (c *CLIHttp) listRuns() {
	runs, running, err := c.client.FineTuneRuns()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "No fine-tune runs yet.")
		return
	}
	if running {
		fmt.Fprintln(c.out, "A run is in progress.")
	}

	fmt.Fprintf(c.out, "%-10s %-10s %-8s %-20s %s\n", "ID", "Status", "Examples", "Started", "Model")
	fmt.Fprintln(c.out, strings.Repeat("-", 78))
	for _, r := range runs {
		fmt.Fprintf(c.out, "%-10s %-10s %-8d %-20s %s\n",
			truncate(r.ID, 10),
			r.Status,
			r.Examples,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.ResultModel,
		)
	}
}

func (c *CLIHttp) crawl() {
	n, err := c.client.Crawl()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "✓ Ingested %d item(s)\n", n)
}

func (c *CLIHttp) showHealth() {
	h, err := c.client.HealthCheck()
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(c.out, "Status:       %s\n", h.Status)
	fmt.Fprintf(c.out, "Version:      %s\n", h.Version)
	fmt.Fprintf(c.out, "Database:     %v\n", h.DBHealthy)
	fmt.Fprintf(c.out, "Provider:     %s\n", h.Provider)
	fmt.Fprintf(c.out, "Active model: %s\n", h.ActiveModel)
	fmt.Fprintf(c.out, "Vector:       %s\n", h.Vector)
	fmt.Fprintf(c.out, "Fine-tuning:  %v\n", h.FineTuning)
}

func (c *CLIHttp) readInput(prompt, defaultValue string) string {
	if c.rl == nil {
		return defaultValue
	}
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	}

	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ")

	if err != nil {
		return defaultValue
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return defaultValue
	}
	return input
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// Run connects to serverURL and blocks in the shell until the user exits
func Run(serverURL string) error {
	shell, err := NewCLIHttp(serverURL)
	if err != nil {
		return err
	}
	shell.Start()
	return nil
}
