package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"quickchat/internal/models"
)

// fakeUserRepo is an in-memory storage.UserRepository for service tests.
type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByIDWithProfile(ctx context.Context, id uint) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) ListOthers(_ context.Context, currentUserID uint) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.ID != currentUserID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) SearchByName(_ context.Context, name string, currentUserID uint) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.ID != currentUserID && strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fakeProfileRepo is an in-memory storage.ProfileRepository.
type fakeProfileRepo struct {
	profiles map[uint]*models.Profile
	nextID   uint
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uint]*models.Profile{}, nextID: 1}
}

func (f *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	profile.ID = f.nextID
	f.nextID++
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id uint) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	if _, ok := f.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileRepo) Delete(_ context.Context, id uint) error {
	delete(f.profiles, id)
	return nil
}

// fakeMessageRepo is an in-memory storage.MessageRepository.
type fakeMessageRepo struct {
	messages map[uint]*models.Message
	nextID   uint
	users    *fakeUserRepo
}

func newFakeMessageRepo(users *fakeUserRepo) *fakeMessageRepo {
	return &fakeMessageRepo{messages: map[uint]*models.Message{}, nextID: 1, users: users}
}

func (f *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	message.ID = f.nextID
	f.nextID++
	cp := *message
	f.messages[message.ID] = &cp
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id uint) (*models.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMessageRepo) GetByIDWithParticipants(ctx context.Context, id uint) (*models.Message, error) {
	m, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sender, ok := f.users.users[m.SenderID]; ok {
		m.Sender = *sender
	}
	if receiver, ok := f.users.users[m.ReceiverID]; ok {
		m.Receiver = *receiver
	}
	return m, nil
}

func (f *fakeMessageRepo) ListBetween(ctx context.Context, userA, userB uint) ([]*models.Message, error) {
	var out []*models.Message
	for id := uint(1); id < f.nextID; id++ {
		m, ok := f.messages[id]
		if !ok {
			continue
		}
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			full, err := f.GetByIDWithParticipants(ctx, id)
			if err != nil {
				return nil, err
			}
			out = append(out, full)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) Delete(_ context.Context, id uint) error {
	delete(f.messages, id)
	return nil
}

// fakeMailer records sent OTPs instead of talking to SMTP.
type fakeMailer struct {
	sent map[string]string // email -> otp
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: map[string]string{}}
}

func (f *fakeMailer) SendVerificationOTP(_ context.Context, toEmail, _ string, otp string) error {
	f.sent[toEmail] = otp
	return nil
}
