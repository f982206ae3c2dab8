package store

import (
	"context"
	"database/sql"
	"fmt"

	"stocktrail/internal/model"
)

// CreateSection creates a section. A nil parentID marks a top-level section.
// If a parent is given, it must exist and belong to the same organization.
func CreateSection(ctx context.Context, db *sql.DB, name, description string, parentID *int64, organizationID int64) (*model.Section, error) {
	if parentID != nil {
		parent, err := GetSection(ctx, db, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("parent section not found")
		}
		if parent.OrganizationID != organizationID {
			return nil, fmt.Errorf("parent section belongs to a different organization")
		}
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO sections (name, description, parent_id, organization_id) VALUES (?, ?, ?, ?)`,
		name, description, parentID, organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating section: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting section id: %w", err)
	}

	return GetSection(ctx, db, id)
}

// GetSection returns a section by ID.
func GetSection(ctx context.Context, db *sql.DB, id int64) (*model.Section, error) {
	s := &model.Section{}
	var description sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, parent_id, organization_id, created_at
		 FROM sections WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &description, &s.ParentID, &s.OrganizationID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting section: %w", err)
	}
	s.Description = description.String
	return s, nil
}

// ListOrganizationSections returns all sections of an organization as a
// flat list, regardless of nesting level.
func ListOrganizationSections(ctx context.Context, db *sql.DB, organizationID int64) ([]model.Section, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, parent_id, organization_id, created_at
		 FROM sections WHERE organization_id = ?`, organizationID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	defer rows.Close()

	return scanSections(rows)
}

// ListSubsections returns the direct children of a section ordered by name,
// each annotated with its direct item count.
func ListSubsections(ctx context.Context, db *sql.DB, sectionID int64) ([]model.Section, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.id, s.name, s.description, s.parent_id, s.organization_id, s.created_at,
		        COUNT(i.id) AS item_count
		 FROM sections s
		 LEFT JOIN items i ON i.section_id = s.id
		 WHERE s.parent_id = ?
		 GROUP BY s.id
		 ORDER BY s.name`, sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subsections: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var s model.Section
		var description sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &description, &s.ParentID, &s.OrganizationID, &s.CreatedAt, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("scanning subsection: %w", err)
		}
		s.Description = description.String
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// UpdateSection updates a section's name and description.
func UpdateSection(ctx context.Context, db *sql.DB, id int64, name, description string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sections SET name = ?, description = ? WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("updating section: %w", err)
	}
	return nil
}

// DeleteSection deletes a section. Child sections and items in the subtree
// are removed by foreign key cascade.
func DeleteSection(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	return nil
}

func scanSections(rows *sql.Rows) ([]model.Section, error) {
	var sections []model.Section
	for rows.Next() {
		var s model.Section
		var description sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &description, &s.ParentID, &s.OrganizationID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		s.Description = description.String
		sections = append(sections, s)
	}
	return sections, rows.Err()
}
