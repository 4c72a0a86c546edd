package report

import (
	"fmt"
	"io"
	"strconv"

	"rtsched/internal/model"

	"github.com/gookit/color"
	"github.com/markphelps/optional"
	"github.com/olekukonko/tablewriter"
)

// WriteTable prints the trace, one row per instance.
func WriteTable(w io.Writer, s *model.Schedule) {
	rows := make([][]string, 0, s.Len())
	for _, ti := range s.Instances() {
		rows = append(rows, []string{
			ti.Task.Name,
			ti.Start.String(),
			ti.End.String(),
			ti.Duration().String(),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task", "Start", "End", "Duration"})
	table.AppendBulk(rows)
	table.SetFooter([]string{"", "", "Busy", s.CoveredTime().String()})
	table.Render()
}

// WriteSummary prints the verdict, the utilization figures and one row per task.
func WriteSummary(w io.Writer, r *Report) {
	title := color.Style{color.FgCyan, color.OpBold}
	fmt.Fprintln(w, title.Sprintf("%s (%s)", r.TaskSet, r.Algorithm))
	fmt.Fprintf(w, "Hyperperiod:  %s\n", r.Hyperperiod)
	fmt.Fprintf(w, "Utilization:  %.3f (Liu-Layland bound %.3f)\n", r.Utilization, r.LiuLaylandBound)
	fmt.Fprintf(w, "Idle time:    %s\n", r.IdleTime)
	fmt.Fprintf(w, "Guarantees:   RM %s, EDF %s\n", yesNo(r.RMGuaranteed), yesNo(r.EDFGuaranteed))

	if r.Feasible {
		fmt.Fprintln(w, color.Style{color.FgGreen, color.OpBold}.Sprint("Feasible"))
	} else {
		fmt.Fprintln(w, color.Style{color.FgRed, color.OpBold}.Sprintf(
			"Deadline miss: %s (deadline %s, detected at %s)",
			r.MissedTask.OrElse("?"), formatOptional(r.MissedDeadline), formatOptional(r.MissedAt)))
	}

	if len(r.Tasks) == 0 {
		return
	}
	rows := make([][]string, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		rows = append(rows, []string{
			t.Name,
			t.Period.String(),
			t.Deadline.String(),
			t.Execution.String(),
			fmt.Sprintf("%d/%d", t.CompletedJobs, t.Jobs),
			fmt.Sprintf("%s/%s", t.Executed, t.Expected),
			formatOptional(t.MeanResponse),
			formatOptional(t.WorstResponse),
		})
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task", "Period", "Deadline", "Execution", "Jobs", "Executed", "Mean response", "Worst response"})
	table.AppendBulk(rows)
	table.Render()
}

// WriteComparison prints one row per report, typically one per policy.
func WriteComparison(w io.Writer, reports []*Report) {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		verdict := color.Green.Sprint("feasible")
		if !r.Feasible {
			verdict = color.Red.Sprint("infeasible")
		}
		rows = append(rows, []string{
			r.Algorithm,
			verdict,
			strconv.Itoa(len(r.Instances)),
			r.MissedTask.OrElse("-"),
			formatOptional(r.MissedAt),
			r.IdleTime.String(),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Algorithm", "Verdict", "Instances", "Missed task", "Missed at", "Idle"})
	table.AppendBulk(rows)
	table.Render()
}

func formatOptional(v optional.Float64) string {
	out := "-"
	v.If(func(f float64) {
		out = strconv.FormatFloat(f, 'f', -1, 64)
	})
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
