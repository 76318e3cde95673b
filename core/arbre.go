package core

import (
	"fmt"
	"strings"

	"github.com/ansadev/PortailStat/db"
)

// EntreeArbre est un élément du parcours aplati de la forêt d'indicateurs.
// Ligne est nil pour un principal synthétique (regroupement hérité par `~`
// sans ligne propre).
type EntreeArbre struct {
	Ligne      *db.LigneIndicateur
	Label      string
	Profondeur int
	AEnfants   bool
}

type noeudArbre struct {
	ligne   *db.LigneIndicateur
	label   string
	enfants []*noeudArbre
}

// decomposeComposite coupe un libellé composite sur le premier `~`.
// sous vaut "" quand le libellé est simple.
func decomposeComposite(label string) (principal, sous string) {
	if i := strings.Index(label, "~"); i >= 0 {
		return strings.TrimSpace(label[:i]), strings.TrimSpace(label[i+1:])
	}
	return strings.TrimSpace(label), ""
}

// estStructure décide du mode de reconstruction: dès qu'une ligne porte un
// code ou un code parent, la hiérarchie est explicite.
func estStructure(lignes []db.LigneIndicateur) bool {
	for i := range lignes {
		if lignes[i].Code != "" || lignes[i].ParentCode != "" {
			return true
		}
	}
	return false
}

// ConstruireArbre reconstruit la forêt d'indicateurs d'un tableau et la rend
// aplatie en ordre de parcours préfixe. Les lignes arrivent déjà triées
// (ordre nul en dernier, puis ordre, puis label); l'ordre des frères est
// donc l'ordre d'entrée.
func ConstruireArbre(lignes []db.LigneIndicateur) []EntreeArbre {
	if estStructure(lignes) {
		return arbreStructure(lignes)
	}
	return arbreHerite(lignes)
}

// arbreStructure relie les lignes par égalité parent_code == code. Un code
// parent absent ou inconnu fait de la ligne une racine. Un nœud dont la
// chaîne d'ancêtres boucle est réémis comme racine au premier passage déjà
// vu: chaque ligne apparaît exactement une fois.
func arbreStructure(lignes []db.LigneIndicateur) []EntreeArbre {
	noeuds := make([]*noeudArbre, len(lignes))
	parCode := make(map[string]*noeudArbre)
	for i := range lignes {
		l := &lignes[i]
		n := &noeudArbre{ligne: l, label: l.Label}
		noeuds[i] = n
		cle := l.Code
		if cle == "" {
			cle = fmt.Sprintf("#%d", l.ID)
		}
		if _, pris := parCode[cle]; !pris {
			parCode[cle] = n
		}
	}

	var racines []*noeudArbre
	for i := range lignes {
		l := &lignes[i]
		parent := (*noeudArbre)(nil)
		if l.ParentCode != "" {
			parent = parCode[l.ParentCode]
		}
		if parent == nil || parent == noeuds[i] {
			racines = append(racines, noeuds[i])
			continue
		}
		parent.enfants = append(parent.enfants, noeuds[i])
	}

	visites := make(map[*noeudArbre]bool, len(noeuds))
	var sortie []EntreeArbre
	var descend func(n *noeudArbre, profondeur int)
	descend = func(n *noeudArbre, profondeur int) {
		if visites[n] {
			return
		}
		visites[n] = true
		sortie = append(sortie, EntreeArbre{
			Ligne:      n.ligne,
			Label:      n.label,
			Profondeur: profondeur,
			AEnfants:   len(n.enfants) > 0,
		})
		for _, e := range n.enfants {
			descend(e, profondeur+1)
		}
	}
	for _, r := range racines {
		descend(r, 0)
	}
	// Restes d'un cycle jamais atteint depuis une racine: chacun devient
	// racine à son tour, dans l'ordre d'entrée.
	for _, n := range noeuds {
		if !visites[n] {
			descend(n, 0)
		}
	}
	return sortie
}

// arbreHerite regroupe les libellés composites `principal ~ sous` sous leur
// principal, à profondeur 1 exactement. Les principaux apparaissent dans
// l'ordre de première rencontre; un principal sans ligne propre est émis
// comme entrée synthétique.
func arbreHerite(lignes []db.LigneIndicateur) []EntreeArbre {
	type groupe struct {
		propre  *db.LigneIndicateur
		enfants []*db.LigneIndicateur
	}
	var ordre []string
	groupes := make(map[string]*groupe)

	obtenir := func(principal string) *groupe {
		g, ok := groupes[principal]
		if !ok {
			g = &groupe{}
			groupes[principal] = g
			ordre = append(ordre, principal)
		}
		return g
	}

	for i := range lignes {
		l := &lignes[i]
		principal, sous := decomposeComposite(l.Label)
		g := obtenir(principal)
		if sous == "" {
			if g.propre == nil {
				g.propre = l
			}
		} else {
			g.enfants = append(g.enfants, l)
		}
	}

	var sortie []EntreeArbre
	for _, principal := range ordre {
		g := groupes[principal]
		sortie = append(sortie, EntreeArbre{
			Ligne:      g.propre,
			Label:      principal,
			Profondeur: 0,
			AEnfants:   len(g.enfants) > 0,
		})
		for _, e := range g.enfants {
			_, sous := decomposeComposite(e.Label)
			sortie = append(sortie, EntreeArbre{
				Ligne:      e,
				Label:      sous,
				Profondeur: 1,
			})
		}
	}
	return sortie
}
