package core

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	"github.com/ansadev/PortailStat/db"
)

const cookieSession = "portail_session"

func generateToken(length int) string {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		result[i] = letters[num.Int64()]
	}
	return string(result)
}

func hashPassword(p string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
}

// UtilisateurCourant résout l'utilisateur porté par le cookie de session.
func (a *App) UtilisateurCourant(r *http.Request) (*db.Utilisateur, error) {
	cookie, err := r.Cookie(cookieSession)
	if err != nil {
		return nil, db.ErrIntrouvable
	}
	return a.DB.GetSessionUtilisateur(cookie.Value)
}

type infoUtilisateur struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	IsChef      bool   `json:"is_chef"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
	CategorieID *int   `json:"categorie_id"`
}

func versInfo(u *db.Utilisateur) infoUtilisateur {
	info := infoUtilisateur{
		ID:          u.ID,
		Email:       u.Email,
		IsChef:      u.IsChef,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
	}
	if u.CategorieID.Valid {
		cat := int(u.CategorieID.Int64)
		info.CategorieID = &cat
	}
	return info
}

// Login authentifie par email/mot de passe et pose le cookie de session.
func (a *App) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		erreurJSON(w, http.StatusBadRequest, "corps JSON invalide")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		erreurJSON(w, http.StatusBadRequest, "email et mot de passe requis")
		return
	}

	u, err := a.DB.GetUtilisateurByEmail(req.Email)
	if err != nil {
		erreurJSON(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}
	if !u.Active {
		erreurJSON(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		erreurJSON(w, http.StatusUnauthorized, "identifiants invalides")
		return
	}

	token := generateToken(48)
	expiration := time.Now().UTC().Add(time.Duration(a.SessionHours) * time.Hour)
	if err := a.DB.SaveSession(token, u.ID, expiration); err != nil {
		Errorf("sauvegarde de session: %v", err)
		erreurJSON(w, http.StatusInternalServerError, "session impossible")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieSession,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  expiration,
	})
	Infof("Connexion de %s", u.Email)
	repondreJSON(w, http.StatusOK, versInfo(u))
}

// Logout invalide la session courante.
func (a *App) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if cookie, err := r.Cookie(cookieSession); err == nil {
		_ = a.DB.DeleteSession(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSession,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	repondreJSON(w, http.StatusOK, map[string]string{"message": "déconnecté"})
}

// UserInfo renvoie le profil de l'utilisateur connecté.
func (a *App) UserInfo(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	u, err := a.UtilisateurCourant(r)
	if err != nil {
		erreurJSON(w, http.StatusUnauthorized, "non authentifié")
		return
	}
	repondreJSON(w, http.StatusOK, versInfo(u))
}

// EnsureAdmin crée le superutilisateur initial si la configuration le demande
// (ADMIN_EMAIL / ADMIN_PASS) et qu'il n'existe pas déjà.
func (a *App) EnsureAdmin() error {
	email := strings.TrimSpace(strings.ToLower(a.Config["ADMIN_EMAIL"]))
	pass := a.Config["ADMIN_PASS"]
	if email == "" || pass == "" {
		return nil
	}
	if _, err := a.DB.GetUtilisateurByEmail(email); err == nil {
		return nil
	}

	hash, err := hashPassword(pass)
	if err != nil {
		return err
	}
	_, err = a.DB.CreateUtilisateur(&db.Utilisateur{
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		IsStaff:      true,
		IsSuperuser:  true,
	})
	if err == nil {
		Infof("Superutilisateur initial créé: %s", email)
	}
	return err
}
