package render

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/cursor-usage/internal/models"
	"github.com/j-veylop/cursor-usage/internal/report"
	"github.com/j-veylop/cursor-usage/internal/ui/styles"
)

// CycleDateLayout formats billing cycle bounds.
const CycleDateLayout = "Jan 2, 2006"

// BillingTitle heads the billing overview.
const BillingTitle = "CURSOR USAGE SUMMARY"

// Billing writes the billing overview. Plan and on-demand amounts are shown
// in the units the API reports them in.
func Billing(w io.Writer, b *models.BillingSummary, width int) error {
	p := &printer{w: w}
	if b == nil {
		p.println(styles.WarningTextStyle.Render("No billing data available"))
		return p.err
	}

	banner(p, BillingTitle, width)
	membership := b.MembershipType
	if membership == "" {
		membership = "N/A"
	}
	p.println(field("Membership", membership))
	if start, end := b.CycleStart(), b.CycleEnd(); !start.IsZero() && !end.IsZero() {
		p.println(field("Billing cycle", cycle(start, end)))
	}
	if b.IsUnlimited {
		p.println(field("Limit", "Unlimited"))
	}

	if plan := b.IndividualUsage.Plan; plan != nil {
		pct := b.PlanPercentUsed()
		p.println("")
		p.println(styles.SubTitleStyle.Render("Plan usage"))
		p.println(field("Used", fmt.Sprintf("%s / %s (%s)",
			humanize.Ftoa(plan.Used),
			humanize.Ftoa(plan.Limit),
			styles.GetUsageStyle(pct).Render(report.FormatPercent(pct, 2)))))
		p.println(field("Remaining", humanize.Ftoa(plan.Remaining)))
		p.println(field("Breakdown", fmt.Sprintf("%s included, %s bonus",
			humanize.Ftoa(plan.Breakdown.Included),
			humanize.Ftoa(plan.Breakdown.Bonus))))
	}

	if od := b.IndividualUsage.OnDemand; od != nil && od.Enabled {
		p.println("")
		p.println(styles.SubTitleStyle.Render("On-demand usage"))
		used := humanize.Ftoa(od.Used)
		if od.Limit != nil {
			used += " / " + humanize.Ftoa(*od.Limit)
		}
		p.println(field("Used", used))
		if od.Remaining != nil {
			p.println(field("Remaining", humanize.Ftoa(*od.Remaining)))
		}
		p.println(field("Status", "Enabled"))
	}

	if b.AutoModelSelectedDisplayMessage != "" || b.NamedModelSelectedDisplayMessage != "" {
		p.println("")
		if msg := b.AutoModelSelectedDisplayMessage; msg != "" {
			p.println(styles.InfoTextStyle.Render(msg))
		}
		if msg := b.NamedModelSelectedDisplayMessage; msg != "" {
			p.println(styles.InfoTextStyle.Render(msg))
		}
	}
	return p.err
}

func cycle(start, end time.Time) string {
	return start.UTC().Format(CycleDateLayout) + " - " + end.UTC().Format(CycleDateLayout)
}
