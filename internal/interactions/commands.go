package interactions

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avwhitney/stagehand/pkg/core/model"
)

const reportDateLayout = "2006-01-02"

// handleCommand dispatches a slash command. Card-scoped commands resolve
// their show from the channel they were invoked in, which for a show's
// discussion thread is the card reference itself.
func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request, in *interaction) {
	ctx := r.Context()
	isAdmin := in.hasRole(h.adminRole)

	switch in.Data.Name {
	case "upcoming":
		items, err := h.service.Upcoming(ctx)
		if err != nil {
			h.replyError(w, err)
			return
		}

		// Admins broadcast the listing, everyone else sees it privately
		reply := ephemeral
		if isAdmin {
			reply = public
		}

		if len(items) == 0 {
			reply(w, "No upcoming shows.")
			return
		}

		var lines []string
		for _, item := range items {
			line := fmt.Sprintf("**%s** — <t:%d:F>", item.Event.Summary, item.Event.StartTime.Unix())
			if item.HasCard {
				line += fmt.Sprintf(" — <#%s> — Needed: %s", item.Event.ThreadRef, item.NeededString(h.styles))
			} else {
				line += " — card not posted yet"
			}
			lines = append(lines, line)
		}
		reply(w, strings.Join(lines, "\n"))

	case "threads":
		if !isAdmin {
			ephemeral(w, fmt.Sprintf("Only <@&%s> members can do that.", h.adminRole))
			return
		}

		result, err := h.service.PublishCards(ctx)
		if err != nil {
			h.replyError(w, err)
			return
		}
		public(w, fmt.Sprintf("Posted %d new show cards, healed %d, %d already live.",
			result.Created, result.Healed, result.Skipped))

	case "adduser":
		userID := in.stringOption("user")
		role := model.Role(in.stringOption("role"))
		if userID == "" || !role.IsValid() {
			ephemeral(w, "A user and a valid role are required.")
			return
		}

		snap, err := h.service.AdminAssignRole(ctx, in.ChannelID, userID, role, isAdmin)
		if err != nil {
			h.replyError(w, err)
			return
		}
		if snap.AlreadyAssigned {
			ephemeral(w, fmt.Sprintf("<@%s> is already signed up as %s.", userID, h.styles.FieldName(role)))
			return
		}
		public(w, fmt.Sprintf("<@%s> was signed up as %s.", userID, h.styles.FieldName(role)))

	case "setmode":
		mode := model.Mode(strings.ToUpper(in.stringOption("mode")))
		if !mode.IsValid() {
			ephemeral(w, "Valid modes are STANDARD, FESTIVAL, MEETING and NONE.")
			return
		}

		if _, err := h.service.SetMode(ctx, in.ChannelID, mode, isAdmin); err != nil {
			h.replyError(w, err)
			return
		}
		public(w, fmt.Sprintf("This show is now in %s mode.", mode))

	case "setneeded":
		bookers := in.intOption("bookers", 0)
		doors := in.intOption("doors", 0)
		sound := in.intOption("sound", 0)

		snap, err := h.service.SetVolunteersNeeded(ctx, in.ChannelID, bookers, doors, sound, isAdmin)
		if err != nil {
			h.replyError(w, err)
			return
		}
		public(w, "Needed volunteers updated: "+snap.Needed.String(h.styles))

	case "report":
		start, err := time.ParseInLocation(reportDateLayout, in.stringOption("start"), time.UTC)
		if err != nil {
			ephemeral(w, "Dates must look like 2026-01-31.")
			return
		}
		end, err := time.ParseInLocation(reportDateLayout, in.stringOption("end"), time.UTC)
		if err != nil {
			ephemeral(w, "Dates must look like 2026-01-31.")
			return
		}
		// Include shows on the end date itself
		end = end.AddDate(0, 0, 1).Add(-time.Second)

		entries, err := h.service.Report(ctx, start, end)
		if err != nil {
			h.replyError(w, err)
			return
		}
		if len(entries) == 0 {
			ephemeral(w, "No signups in that window.")
			return
		}

		lines := make([]string, 0, len(entries)+1)
		lines = append(lines, "**Signups per volunteer:**")
		for _, entry := range entries {
			lines = append(lines, fmt.Sprintf("<@%s>: %d", entry.UserID, entry.Count))
		}
		ephemeral(w, strings.Join(lines, "\n"))

	default:
		ephemeral(w, "Unknown command.")
	}
}
