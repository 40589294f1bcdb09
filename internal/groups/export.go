package groups

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
)

var exportColumns = []string{"Amount", "Description", "Date", "Contributor"}

// ExportCSV writes the group's approved contributions to w and returns a
// suggested file name. Nothing is written when a gate fails.
func (s *service) ExportCSV(ctx context.Context, groupID, userID uuid.UUID, w io.Writer) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil || !user.IsPremium {
		return "", pkgerrors.New(pkgerrors.CodePremiumRequired, premiumMessage)
	}

	group, err := s.loadForMember(ctx, groupID, userID)
	if err != nil {
		return "", err
	}
	rows, err := s.repo.ListExportRows(ctx, groupID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list export rows")
	}

	records := make([][]string, 0, len(rows)+5)
	records = append(records,
		[]string{"Group", group.Name},
		[]string{"Target", group.TargetAmount.StringFixed(2)},
		[]string{"Category", group.Category},
		[]string{""},
		exportColumns,
	)
	for _, row := range rows {
		records = append(records, []string{
			row.Amount.StringFixed(2),
			row.Description,
			row.ContributionDate.Format(deadlineLayout),
			row.Username,
		})
	}
	if err := csv.NewWriter(w).WriteAll(records); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}

	s.logg.Info(s.logg.WithField(s.logg.WithGroupID(ctx, groupID.String()), "rows", len(rows)), "group export generated")
	return exportFilename(group.Name, s.now()), nil
}

func exportFilename(name string, now time.Time) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, strings.TrimSpace(name))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "group"
	}
	return fmt.Sprintf("%s-%s.csv", slug, now.UTC().Format("20060102"))
}
