// Package memory keeps every store in process memory. It backs the memory
// store driver and the service and controller tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
)

type userRow struct {
	user       models.User
	workspaces []uuid.UUID
	seq        uint64
}

type workspaceRow struct {
	workspace models.Workspace
	members   []uuid.UUID
	seq       uint64
}

type invitationRow struct {
	invitation models.Invitation
	seq        uint64
}

type presentationRow struct {
	presentation models.Presentation
	seq          uint64
}

type state struct {
	users         map[uuid.UUID]*userRow
	workspaces    map[uuid.UUID]*workspaceRow
	invitations   map[uuid.UUID]*invitationRow
	presentations map[uuid.UUID]*presentationRow
	seq           uint64
}

func newState() *state {
	return &state{
		users:         map[uuid.UUID]*userRow{},
		workspaces:    map[uuid.UUID]*workspaceRow{},
		invitations:   map[uuid.UUID]*invitationRow{},
		presentations: map[uuid.UUID]*presentationRow{},
	}
}

func (s *state) next() uint64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for id, r := range s.users {
		cp := *r
		cp.workspaces = append([]uuid.UUID(nil), r.workspaces...)
		c.users[id] = &cp
	}
	for id, r := range s.workspaces {
		cp := *r
		cp.members = append([]uuid.UUID(nil), r.members...)
		c.workspaces[id] = &cp
	}
	for id, r := range s.invitations {
		cp := *r
		c.invitations[id] = &cp
	}
	for id, r := range s.presentations {
		cp := *r
		cp.presentation.Slides = cloneSlides(r.presentation.Slides)
		c.presentations[id] = &cp
	}
	return c
}

// Store holds all records behind one mutex. A transaction works on a private
// copy of the state that replaces the shared state only on commit; calls made
// outside it wait until it ends, so they neither see its writes nor get
// overwritten by it.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

func New() *Store {
	return &Store{data: newState(), now: time.Now}
}

// SetClock overrides the time source used for created/updated stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() store.UserStore                 { return &userStore{s: s} }
func (s *Store) Workspaces() store.WorkspaceStore       { return &workspaceStore{s: s} }
func (s *Store) Invitations() store.InvitationStore     { return &invitationStore{s: s} }
func (s *Store) Presentations() store.PresentationStore { return &presentationStore{s: s} }

func (s *Store) WithTx(ctx context.Context, fn func(stores store.Stores) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	t := &tx{data: s.data.clone(), now: s.now}
	s.mu.Unlock()

	if err := fn(t); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = t.data
	s.mu.Unlock()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) locked(fn func(d *state, now time.Time) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data, s.now())
}

// tx is the view handed to a transaction body. Its writes land on a clone
// that WithTx publishes on commit and drops on rollback.
type tx struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

func (t *tx) Users() store.UserStore                 { return &userStore{s: t} }
func (t *tx) Workspaces() store.WorkspaceStore       { return &workspaceStore{s: t} }
func (t *tx) Invitations() store.InvitationStore     { return &invitationStore{s: t} }
func (t *tx) Presentations() store.PresentationStore { return &presentationStore{s: t} }

func (t *tx) locked(fn func(d *state, now time.Time) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.data, t.now())
}

// db is what the per-entity stores run against: the shared store or a
// transaction's private copy.
type db interface {
	locked(fn func(d *state, now time.Time) error) error
}

func cloneSlides(in []models.Slide) []models.Slide {
	if in == nil {
		return nil
	}
	out := make([]models.Slide, len(in))
	for i, sl := range in {
		out[i] = sl
		if sl.Blocks != nil {
			out[i].Blocks = append(models.Blocks(nil), sl.Blocks...)
		}
	}
	return out
}

// ---- users ----

type userStore struct{ s db }

func (u *userStore) Create(ctx context.Context, in *models.User) error {
	return u.s.locked(func(d *state, now time.Time) error {
		for _, r := range d.users {
			if r.user.Email == in.Email || r.user.Username == in.Username {
				return store.ErrDuplicate
			}
		}
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		}
		if _, ok := d.users[in.ID]; ok {
			return store.ErrDuplicate
		}
		if in.Date.IsZero() {
			in.Date = now
		}
		row := &userRow{user: *in, seq: d.next()}
		row.user.Workspaces = nil
		d.users[in.ID] = row
		return nil
	})
}

func (u *userStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	err := u.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.users[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *userStore) GetWithWorkspaces(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	err := u.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.users[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.user
		rows := make([]*workspaceRow, 0, len(r.workspaces))
		for _, wid := range r.workspaces {
			if w, ok := d.workspaces[wid]; ok {
				rows = append(rows, w)
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
		out.Workspaces = make([]models.Workspace, 0, len(rows))
		for _, w := range rows {
			out.Workspaces = append(out.Workspaces, w.workspace)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *userStore) find(match func(models.User) bool) (*models.User, error) {
	var out *models.User
	err := u.s.locked(func(d *state, _ time.Time) error {
		var best *userRow
		for _, r := range d.users {
			if match(r.user) && (best == nil || r.seq < best.seq) {
				best = r
			}
		}
		if best == nil {
			return store.ErrNotFound
		}
		cp := best.user
		out = &cp
		return nil
	})
	return out, err
}

func (u *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.find(func(m models.User) bool { return m.Email == email })
}

func (u *userStore) GetByLogin(ctx context.Context, email, username string) (*models.User, error) {
	return u.find(func(m models.User) bool { return m.Email == email || m.Username == username })
}

func (u *userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := u.GetByEmail(ctx, email)
	return existence(err)
}

func (u *userStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := u.find(func(m models.User) bool { return m.Username == username })
	return existence(err)
}

func existence(err error) (bool, error) {
	switch err {
	case nil:
		return true, nil
	case store.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (u *userStore) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return u.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.users[id]
		if !ok {
			return store.ErrNotFound
		}
		r.user.Password = hash
		return nil
	})
}

func (u *userStore) AddWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) error {
	return u.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.users[userID]
		if !ok {
			return store.ErrNotFound
		}
		if _, ok := d.workspaces[workspaceID]; !ok {
			return store.ErrNotFound
		}
		r.workspaces = appendUnique(r.workspaces, workspaceID)
		return nil
	})
}

func appendUnique(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}

// ---- workspaces ----

type workspaceStore struct{ s db }

func (w *workspaceStore) Create(ctx context.Context, in *models.Workspace) error {
	return w.s.locked(func(d *state, now time.Time) error {
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		}
		if _, ok := d.workspaces[in.ID]; ok {
			return store.ErrDuplicate
		}
		if _, ok := d.users[in.OwnerID]; !ok {
			return store.ErrNotFound
		}
		in.CreatedAt, in.UpdatedAt = now, now
		row := &workspaceRow{workspace: *in, seq: d.next()}
		row.workspace.Members = nil
		d.workspaces[in.ID] = row
		return nil
	})
}

func (w *workspaceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var out models.Workspace
	err := w.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.workspaces[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.workspace
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (w *workspaceStore) GetWithMembers(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var out models.Workspace
	err := w.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.workspaces[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.workspace
		out.Members = make([]models.User, 0, len(r.members))
		for _, uid := range r.members {
			if u, ok := d.users[uid]; ok {
				out.Members = append(out.Members, models.User{
					ID:        u.user.ID,
					FirstName: u.user.FirstName,
					LastName:  u.user.LastName,
					Email:     u.user.Email,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (w *workspaceStore) IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var member bool
	err := w.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.workspaces[workspaceID]
		if !ok {
			return nil
		}
		for _, uid := range r.members {
			if uid == userID {
				member = true
				break
			}
		}
		return nil
	})
	return member, err
}

func (w *workspaceStore) AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return w.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.workspaces[workspaceID]
		if !ok {
			return store.ErrNotFound
		}
		if _, ok := d.users[userID]; !ok {
			return store.ErrNotFound
		}
		r.members = appendUnique(r.members, userID)
		return nil
	})
}

func (w *workspaceStore) Update(ctx context.Context, id uuid.UUID, name, logoURL *string) (*models.Workspace, error) {
	var out models.Workspace
	err := w.s.locked(func(d *state, now time.Time) error {
		r, ok := d.workspaces[id]
		if !ok {
			return store.ErrNotFound
		}
		if name != nil {
			r.workspace.Name = *name
		}
		if logoURL != nil {
			r.workspace.LogoURL = *logoURL
		}
		if name != nil || logoURL != nil {
			r.workspace.UpdatedAt = now
		}
		out = r.workspace
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (w *workspaceStore) ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]models.Workspace, error) {
	var out []models.Workspace
	err := w.s.locked(func(d *state, _ time.Time) error {
		rows := make([]*workspaceRow, 0)
		for _, r := range d.workspaces {
			if r.workspace.OwnerID == ownerID {
				rows = append(rows, r)
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
		for _, r := range rows {
			out = append(out, r.workspace)
		}
		return nil
	})
	return out, err
}

// ---- invitations ----

type invitationStore struct{ s db }

func (i *invitationStore) Create(ctx context.Context, in *models.Invitation) error {
	return i.s.locked(func(d *state, now time.Time) error {
		for _, r := range d.invitations {
			if strings.EqualFold(r.invitation.RecipientEmail, in.RecipientEmail) && r.invitation.WorkspaceID == in.WorkspaceID {
				return store.ErrDuplicate
			}
		}
		if _, ok := d.workspaces[in.WorkspaceID]; !ok {
			return store.ErrNotFound
		}
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		}
		if in.Status == "" {
			in.Status = models.InvitationPending
		}
		in.CreatedAt, in.UpdatedAt = now, now
		row := &invitationRow{invitation: *in, seq: d.next()}
		row.invitation.Sender, row.invitation.Workspace = nil, nil
		d.invitations[in.ID] = row
		return nil
	})
}

func (i *invitationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var out models.Invitation
	err := i.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.invitations[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.invitation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock here: transactions are already serialised.
func (i *invitationStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	return i.GetByID(ctx, id)
}

func (i *invitationStore) list(match func(models.Invitation) bool, populate bool) ([]models.Invitation, error) {
	var out []models.Invitation
	err := i.s.locked(func(d *state, _ time.Time) error {
		rows := make([]*invitationRow, 0)
		for _, r := range d.invitations {
			if match(r.invitation) {
				rows = append(rows, r)
			}
		}
		sort.Slice(rows, func(a, b int) bool { return rows[a].seq > rows[b].seq })
		out = make([]models.Invitation, 0, len(rows))
		for _, r := range rows {
			inv := r.invitation
			if populate {
				if u, ok := d.users[inv.SenderID]; ok {
					inv.Sender = &models.User{ID: u.user.ID, FirstName: u.user.FirstName, LastName: u.user.LastName}
				}
				if w, ok := d.workspaces[inv.WorkspaceID]; ok {
					inv.Workspace = &models.Workspace{ID: w.workspace.ID, Name: w.workspace.Name}
				}
			}
			out = append(out, inv)
		}
		return nil
	})
	return out, err
}

func (i *invitationStore) ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	return i.list(func(inv models.Invitation) bool {
		return inv.RecipientEmail == email && inv.Status == models.InvitationPending
	}, true)
}

func (i *invitationStore) ListPendingForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	return i.list(func(inv models.Invitation) bool {
		return inv.WorkspaceID == workspaceID && inv.Status == models.InvitationPending
	}, false)
}

func (i *invitationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error {
	return i.s.locked(func(d *state, now time.Time) error {
		r, ok := d.invitations[id]
		if !ok {
			return store.ErrNotFound
		}
		r.invitation.Status = status
		r.invitation.UpdatedAt = now
		return nil
	})
}

func (i *invitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	return i.s.locked(func(d *state, _ time.Time) error {
		if _, ok := d.invitations[id]; !ok {
			return store.ErrNotFound
		}
		delete(d.invitations, id)
		return nil
	})
}

// ---- presentations ----

type presentationStore struct{ s db }

func (p *presentationStore) Create(ctx context.Context, in *models.Presentation) error {
	return p.s.locked(func(d *state, now time.Time) error {
		if _, ok := d.workspaces[in.WorkspaceID]; !ok {
			return store.ErrNotFound
		}
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		}
		if _, ok := d.presentations[in.ID]; ok {
			return store.ErrDuplicate
		}
		if in.Slides == nil {
			in.Slides = []models.Slide{}
		}
		in.CreatedAt, in.UpdatedAt = now, now
		row := &presentationRow{presentation: *in, seq: d.next()}
		row.presentation.Slides = cloneSlides(in.Slides)
		row.presentation.Workspace = nil
		d.presentations[in.ID] = row
		return nil
	})
}

func (p *presentationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error) {
	var out models.Presentation
	err := p.s.locked(func(d *state, _ time.Time) error {
		r, ok := d.presentations[id]
		if !ok {
			return store.ErrNotFound
		}
		out = r.presentation
		out.Slides = cloneSlides(r.presentation.Slides)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *presentationStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Presentation, error) {
	out := []models.Presentation{}
	err := p.s.locked(func(d *state, _ time.Time) error {
		rows := make([]*presentationRow, 0)
		for _, r := range d.presentations {
			if r.presentation.WorkspaceID == workspaceID {
				rows = append(rows, r)
			}
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
		for _, r := range rows {
			pr := r.presentation
			pr.Slides = cloneSlides(r.presentation.Slides)
			out = append(out, pr)
		}
		return nil
	})
	return out, err
}

func (p *presentationStore) Update(ctx context.Context, in *models.Presentation) error {
	return p.s.locked(func(d *state, now time.Time) error {
		r, ok := d.presentations[in.ID]
		if !ok {
			return store.ErrNotFound
		}
		in.UpdatedAt = now
		r.presentation.Title = in.Title
		r.presentation.Slides = cloneSlides(in.Slides)
		r.presentation.UpdatedAt = now
		return nil
	})
}

func (p *presentationStore) Delete(ctx context.Context, id uuid.UUID) error {
	return p.s.locked(func(d *state, _ time.Time) error {
		if _, ok := d.presentations[id]; !ok {
			return store.ErrNotFound
		}
		delete(d.presentations, id)
		return nil
	})
}
