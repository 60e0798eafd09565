package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/expenseflow/internal/errs"
	"github.com/GregMSThompson/expenseflow/internal/events"
	"github.com/GregMSThompson/expenseflow/internal/models"
	"github.com/GregMSThompson/expenseflow/internal/state"
	"github.com/GregMSThompson/expenseflow/pkg/logger"
)

type familyStore interface {
	Get(ctx context.Context, familyID string) (*models.Family, error)
	Create(ctx context.Context, f *models.Family) error
	Mutate(ctx context.Context, familyID string, fn func(f *models.Family) error) (*models.Family, bool, error)
}

type familyProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	SetFamily(ctx context.Context, uid, familyID string, role models.Role) error
	ClearFamily(ctx context.Context, uid string) error
}

type invitationStore interface {
	Get(ctx context.Context, id string) (*models.Invitation, error)
	Create(ctx context.Context, inv models.Invitation) (string, error)
	FindPending(ctx context.Context, familyID, email string) (*models.Invitation, error)
	SetStatus(ctx context.Context, id string, st models.InvitationStatus) error
	Delete(ctx context.Context, id string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

type familyService struct {
	families    familyStore
	profiles    familyProfileStore
	invitations invitationStore
	txs         transactionLister
	events      eventPublisher
	now         func() time.Time
}

func NewFamilyService(families familyStore, profiles familyProfileStore, invitations invitationStore, txs transactionLister, publisher eventPublisher) *familyService {
	return &familyService{
		families:    families,
		profiles:    profiles,
		invitations: invitations,
		txs:         txs,
		events:      publisher,
		now:         time.Now,
	}
}

// newFamilyID builds family_<unix millis>_<8 random hex chars>.
func newFamilyID(now time.Time) string {
	return fmt.Sprintf("family_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// currentFamily returns the caller's identity and the family held in the session.
func currentFamily(sess state.Session) (*models.Identity, *models.Family, error) {
	id, err := signedIn(sess)
	if err != nil {
		return nil, nil, err
	}
	fam := sess.Snapshot().Family
	if fam == nil {
		return nil, nil, errs.NewConflictError("you are not in a family")
	}
	return id, fam, nil
}

func (s *familyService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("failed to publish event", "type", e.Type, "err", err)
	}
}

// CreateFamily makes the caller the sole admin of a new family.
func (s *familyService) CreateFamily(ctx context.Context, sess state.Session, name string) (*models.Family, error) {
	id, err := signedIn(sess)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.NewValidationError("family name is required")
	}

	profile, err := s.profiles.GetProfile(ctx, id.UID)
	if err != nil {
		return nil, err
	}
	if profile.FamilyID != "" || sess.Snapshot().Family != nil {
		return nil, errs.NewAlreadyExistsError("you already belong to a family")
	}

	now := s.now()
	fam := &models.Family{
		FamilyID:   newFamilyID(now),
		FamilyName: name,
		CreatedBy:  id.UID,
		CreatedAt:  now,
		Members: map[string]models.Member{
			id.UID: {Role: models.RoleAdmin, JoinedAt: now, Name: id.Name(), Email: id.Email},
		},
	}

	log, ctx := logger.With(ctx, "family_id", fam.FamilyID)
	if err := s.families.Create(ctx, fam); err != nil {
		log.Error("failed to create family", "err", err)
		return nil, err
	}
	if err := s.profiles.SetFamily(ctx, id.UID, fam.FamilyID, models.RoleAdmin); err != nil {
		log.Error("failed to link profile to family", "err", err)
		return nil, err
	}

	sess.Dispatch(state.SetFamily{Family: fam})
	sess.Dispatch(state.SetFamilyMembers{Members: fam.MemberList()})
	sess.Dispatch(state.SetFamilyTransactions{})
	sess.Dispatch(state.SetSentInvitations{})
	log.Info("family created")
	return fam, nil
}

// InviteMember sends an invitation to email, valid for InvitationTTL.
func (s *familyService) InviteMember(ctx context.Context, sess state.Session, email string) (models.Invitation, error) {
	id, fam, err := currentFamily(sess)
	if err != nil {
		return models.Invitation{}, err
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return models.Invitation{}, errs.NewValidationError("a valid email is required")
	}
	for _, m := range fam.Members {
		if normalizeEmail(m.Email) == email {
			return models.Invitation{}, errs.NewAlreadyExistsError("already a member of this family")
		}
	}

	existing, err := s.invitations.FindPending(ctx, fam.FamilyID, email)
	if err != nil {
		return models.Invitation{}, err
	}
	if existing != nil {
		return models.Invitation{}, errs.NewAlreadyExistsError("already invited")
	}

	now := s.now()
	inv := models.Invitation{
		FamilyID:      fam.FamilyID,
		FamilyName:    fam.FamilyName,
		InvitedBy:     id.UID,
		InvitedByName: id.Name(),
		InvitedEmail:  email,
		Status:        models.InvitationPending,
		CreatedAt:     now,
		ExpiresAt:     now.Add(models.InvitationTTL),
	}
	inv.ID, err = s.invitations.Create(ctx, inv)
	if err != nil {
		logger.FromContext(ctx).Error("failed to create invitation", "err", err)
		return models.Invitation{}, err
	}

	sess.Dispatch(state.AddSentInvitation{Invitation: inv})
	s.publish(ctx, events.Event{Type: events.InvitationCreated, FamilyID: fam.FamilyID, ActorUID: id.UID, InvitationID: inv.ID, Email: email})
	return inv, nil
}

// addressedInvitation loads invitation invID and checks it targets the caller.
func (s *familyService) addressedInvitation(ctx context.Context, id *models.Identity, invID string) (*models.Invitation, error) {
	inv, err := s.invitations.Get(ctx, invID)
	if err != nil {
		return nil, err
	}
	if normalizeEmail(inv.InvitedEmail) != normalizeEmail(id.Email) {
		return nil, errs.NewForbiddenError("invitation is not addressed to you")
	}
	if inv.Status != models.InvitationPending {
		return nil, errs.NewConflictError("invitation is no longer pending")
	}
	return inv, nil
}

// AcceptInvitation joins the inviting family as a member.
func (s *familyService) AcceptInvitation(ctx context.Context, sess state.Session, invID string) (*models.Family, error) {
	id, err := signedIn(sess)
	if err != nil {
		return nil, err
	}
	if sess.Snapshot().Family != nil {
		return nil, errs.NewConflictError("leave your current family first")
	}

	inv, err := s.addressedInvitation(ctx, id, invID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if inv.Expired(now) {
		return nil, errs.NewExpiredError("invitation has expired")
	}

	log, ctx := logger.With(ctx, "family_id", inv.FamilyID, "invitation_id", invID)
	fam, _, err := s.families.Mutate(ctx, inv.FamilyID, func(f *models.Family) error {
		f.Members[id.UID] = models.Member{Role: models.RoleMember, JoinedAt: now, Name: id.Name(), Email: id.Email}
		return nil
	})
	if err != nil {
		log.Error("failed to join family", "err", err)
		return nil, err
	}
	if err := s.profiles.SetFamily(ctx, id.UID, fam.FamilyID, models.RoleMember); err != nil {
		log.Error("failed to link profile to family", "err", err)
		return nil, err
	}
	if err := s.invitations.SetStatus(ctx, invID, models.InvitationAccepted); err != nil {
		log.Error("failed to mark invitation accepted", "err", err)
		return nil, err
	}

	sess.Dispatch(state.RemoveInvitation{ID: invID})
	sess.Dispatch(state.SetFamily{Family: fam})
	sess.Dispatch(state.SetFamilyMembers{Members: fam.MemberList()})
	txs, err := s.txs.List(ctx, models.FamilyOwner(fam.FamilyID))
	if err != nil {
		log.Warn("failed to load family transactions", "err", err)
	} else {
		sess.Dispatch(state.SetFamilyTransactions{Transactions: txs})
	}

	s.publish(ctx, events.Event{Type: events.InvitationAccepted, FamilyID: fam.FamilyID, ActorUID: id.UID, InvitationID: invID, Email: inv.InvitedEmail})
	log.Info("invitation accepted")
	return fam, nil
}

func (s *familyService) DeclineInvitation(ctx context.Context, sess state.Session, invID string) error {
	id, err := signedIn(sess)
	if err != nil {
		return err
	}
	inv, err := s.addressedInvitation(ctx, id, invID)
	if err != nil {
		return err
	}
	if err := s.invitations.SetStatus(ctx, invID, models.InvitationDeclined); err != nil {
		logger.FromContext(ctx).Error("failed to mark invitation declined", "invitation_id", invID, "err", err)
		return err
	}

	sess.Dispatch(state.RemoveInvitation{ID: invID})
	s.publish(ctx, events.Event{Type: events.InvitationDeclined, FamilyID: inv.FamilyID, ActorUID: id.UID, InvitationID: invID, Email: inv.InvitedEmail})
	return nil
}

// CancelInvitation withdraws a pending invitation sent from the caller's family.
func (s *familyService) CancelInvitation(ctx context.Context, sess state.Session, invID string) error {
	id, fam, err := currentFamily(sess)
	if err != nil {
		return err
	}
	inv, err := s.invitations.Get(ctx, invID)
	if err != nil {
		return err
	}
	if inv.FamilyID != fam.FamilyID {
		return errs.NewForbiddenError("invitation belongs to another family")
	}
	if inv.Status != models.InvitationPending {
		return errs.NewConflictError("invitation is no longer pending")
	}
	if err := s.invitations.Delete(ctx, invID); err != nil {
		logger.FromContext(ctx).Error("failed to delete invitation", "invitation_id", invID, "err", err)
		return err
	}

	sess.Dispatch(state.DeleteSentInvitation{ID: invID})
	s.publish(ctx, events.Event{Type: events.InvitationCanceled, FamilyID: fam.FamilyID, ActorUID: id.UID, InvitationID: invID, Email: inv.InvitedEmail})
	return nil
}

// LeaveFamily removes the caller from their family. The last member out
// deletes the family; an admin leaving hands the role to the remaining
// member with the lowest uid.
func (s *familyService) LeaveFamily(ctx context.Context, sess state.Session) error {
	id, fam, err := currentFamily(sess)
	if err != nil {
		return err
	}
	log, ctx := logger.With(ctx, "family_id", fam.FamilyID)

	var promoted string
	_, deleted, err := s.families.Mutate(ctx, fam.FamilyID, func(f *models.Family) error {
		promoted = ""
		delete(f.Members, id.UID)
		if len(f.Members) > 0 && !f.HasAdmin() {
			promoted = f.MemberUIDs()[0]
			m := f.Members[promoted]
			m.Role = models.RoleAdmin
			f.Members[promoted] = m
		}
		return nil
	})
	if err != nil {
		log.Error("failed to leave family", "err", err)
		return err
	}
	if err := s.profiles.ClearFamily(ctx, id.UID); err != nil {
		log.Error("failed to clear profile family", "err", err)
		return err
	}
	if promoted != "" {
		if err := s.profiles.SetFamily(ctx, promoted, fam.FamilyID, models.RoleAdmin); err != nil {
			log.Warn("failed to update promoted admin profile", "uid", promoted, "err", err)
		}
		log.Info("admin role reassigned", "uid", promoted)
	}

	sess.Dispatch(state.SetFamily{})
	sess.Dispatch(state.SetFamilyMembers{})
	sess.Dispatch(state.SetFamilyTransactions{})
	sess.Dispatch(state.SetSentInvitations{})

	s.publish(ctx, events.Event{Type: events.MemberLeft, FamilyID: fam.FamilyID, ActorUID: id.UID, SubjectUID: id.UID})
	if deleted {
		s.publish(ctx, events.Event{Type: events.FamilyDeleted, FamilyID: fam.FamilyID, ActorUID: id.UID})
		log.Info("family deleted")
	}
	return nil
}

// RemoveMember lets an admin drop another member from the family.
func (s *familyService) RemoveMember(ctx context.Context, sess state.Session, uid string) (*models.Family, error) {
	id, fam, err := currentFamily(sess)
	if err != nil {
		return nil, err
	}
	if uid == id.UID {
		return nil, errs.NewValidationError("use leave to remove yourself")
	}
	log, ctx := logger.With(ctx, "family_id", fam.FamilyID, "member_uid", uid)

	updated, _, err := s.families.Mutate(ctx, fam.FamilyID, func(f *models.Family) error {
		if !f.IsAdmin(id.UID) {
			return errs.NewForbiddenError("only an admin can remove members")
		}
		if _, ok := f.Members[uid]; !ok {
			return errs.NewNotFoundError("member not found")
		}
		delete(f.Members, uid)
		return nil
	})
	if err != nil {
		log.Warn("failed to remove member", "err", err)
		return nil, err
	}
	if err := s.profiles.ClearFamily(ctx, uid); err != nil {
		log.Error("failed to clear member profile", "err", err)
		return nil, err
	}

	sess.Dispatch(state.RemoveFamilyMember{UID: uid})
	sess.Dispatch(state.SetFamily{Family: updated})
	s.publish(ctx, events.Event{Type: events.MemberRemoved, FamilyID: fam.FamilyID, ActorUID: id.UID, SubjectUID: uid})
	log.Info("member removed")
	return updated, nil
}
