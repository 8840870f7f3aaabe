package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/intake/intake/internal/domain/audit"
	"github.com/intake/intake/internal/domain/identity"
	"github.com/intake/intake/internal/domain/intake"
	"github.com/intake/intake/internal/platform/auth"
)

// seed resets all tables and loads the demo accounts and a sample
// enrollment application. Development only; it deletes everything.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	fmt.Println("Seeding database...")

	for _, table := range []string{"audit_logs", "documents", "intakes", "users"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo123"), 10)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	userRepo := identity.NewRepoPG(pool)

	patient := &identity.User{
		Email:        "patient@demo.com",
		PasswordHash: string(hash),
		Name:         "Demo Patient",
		Role:         auth.RolePatient,
	}
	if err := userRepo.Create(ctx, patient); err != nil {
		return err
	}

	org := "PharmaCorp Trial Coordinator"
	reviewer := &identity.User{
		Email:        "reviewer@demo.com",
		PasswordHash: string(hash),
		Name:         "Dr. Sarah Chen",
		Role:         auth.RoleReviewer,
		Organization: &org,
	}
	if err := userRepo.Create(ctx, reviewer); err != nil {
		return err
	}

	fmt.Println("Created users:")
	fmt.Printf("  - %s (%s) - password: demo123\n", patient.Email, patient.Role)
	fmt.Printf("  - %s (%s, %s) - password: demo123\n", reviewer.Email, reviewer.Role, org)

	intakeRepo := intake.NewRepoPG(pool)
	notes := "Referred by cardiologist Dr. Johnson. Patient meets initial age and diagnosis criteria."
	sample := &intake.Intake{
		ClientName:  "Jane Martinez",
		ClientEmail: "jane.martinez@example.com",
		ClientPhone: "555-987-6543",
		DateOfBirth: "1978-06-22",
		SSN:         "987-65-4321",
		Description: "Applying for Phase III cardiovascular clinical trial. History of hypertension, " +
			"currently on beta blockers. Interested in participating to access new treatment options.",
		Notes:         &notes,
		Status:        intake.StatusPending,
		SubmittedByID: patient.ID,
	}
	if err := intakeRepo.Create(ctx, sample); err != nil {
		return err
	}

	auditSvc := audit.NewService(audit.NewRepoPG(pool))
	err = auditSvc.Record(ctx, patient.ID, sample.ID, audit.ActionCreated,
		audit.CreatedDetails{IntakeID: sample.ID.String()})
	if err != nil {
		return err
	}

	fmt.Println("Created sample enrollment application:")
	fmt.Printf("  - Application ID: %s\n", sample.ID)
	fmt.Printf("  - Status: %s\n", sample.Status)

	fmt.Println("\nSeeding completed!")
	fmt.Println("\n--- Demo Credentials ---")
	fmt.Println("Patient: patient@demo.com / demo123")
	fmt.Println("Reviewer: reviewer@demo.com / demo123")
	return nil
}
