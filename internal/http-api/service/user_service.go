package service

import (
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/policy"

	"github.com/google/uuid"
)

type UserService interface {
	List(query string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Create(in dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(username string) (*dto.UserResponse, error)
	// Update applies only the submitted fields. The role field passes
	// through the anti-escalation transform before anything is written.
	Update(actor policy.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(username string) error
}

type userService struct {
	userRepo  repository.UserRepository
	selfAlias string
}

func NewUserService(userRepo repository.UserRepository, selfAlias string) UserService {
	return &userService{userRepo: userRepo, selfAlias: selfAlias}
}

func (s *userService) List(query string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	users, total, err := s.userRepo.Search(query, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.UserFromModel(&users[i]))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *userService) Create(in dto.CreateUserDTO) (*dto.UserResponse, error) {
	if in.Username == s.selfAlias {
		return nil, ErrReservedUsername
	}
	if _, err := s.userRepo.FindByUsername(in.Username); err == nil {
		return nil, ErrUsernameTaken
	}
	if _, err := s.userRepo.FindByEmail(in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	role := in.Role
	if role == "" {
		role = policy.RoleUser
	}
	user := &models.User{
		ID:        uuid.New().String(),
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) GetByUsername(username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Update(actor policy.Actor, username string, in dto.UpdateUserDTO) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != user.Username {
		if *in.Username == s.selfAlias {
			return nil, ErrReservedUsername
		}
		if _, err := s.userRepo.FindByUsername(*in.Username); err == nil {
			return nil, ErrUsernameTaken
		}
		user.Username = *in.Username
	}
	if in.Email != nil && *in.Email != user.Email {
		if _, err := s.userRepo.FindByEmail(*in.Email); err == nil {
			return nil, ErrEmailTaken
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = in.FirstName
	}
	if in.LastName != nil {
		user.LastName = in.LastName
	}
	if in.Bio != nil {
		user.Bio = in.Bio
	}
	if in.Role != nil {
		user.Role = policy.SanitizeSelfUpdate(actor, *in.Role)
	}

	if err := s.userRepo.Save(user); err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(user)
	return &resp, nil
}

func (s *userService) Delete(username string) error {
	return s.userRepo.Delete(username)
}
