package deployment

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// SSHDeployer uploads result files to a web host via SSH/SCP
type SSHDeployer struct {
	keyPath   string
	deployURL string
	client    *ssh.Client
	connected bool
}

// NewSSHDeployer creates a new SSH deployer for a deploy URL in the format
// user@host:path
func NewSSHDeployer(deployURL string) *SSHDeployer {
	return &SSHDeployer{
		keyPath:   "deploy.pem",
		deployURL: deployURL,
	}
}

// parseDeployURL parses a deploy URL in format: user@host:path
func (d *SSHDeployer) parseDeployURL() (user, host, remotePath string, err error) {
	if d.deployURL == "" {
		return "", "", "", fmt.Errorf("deploy URL is empty")
	}

	parts := strings.SplitN(d.deployURL, "@", 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	user = parts[0]
	hostPath := parts[1]

	hostParts := strings.SplitN(hostPath, ":", 2)
	if len(hostParts) != 2 {
		return "", "", "", fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	host = hostParts[0]
	remotePath = hostParts[1]

	return user, host, remotePath, nil
}

// Connect establishes the SSH connection
func (d *SSHDeployer) Connect() error {
	if d.connected {
		return nil
	}

	user, host, _, err := d.parseDeployURL()
	if err != nil {
		return fmt.Errorf("failed to parse deploy URL: %w", err)
	}

	keyData, err := os.ReadFile(d.keyPath)
	if err != nil {
		return fmt.Errorf("failed to read SSH key file %s: %w", d.keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // In production, use proper host key verification
		Timeout:         30 * time.Second,
	}

	d.client, err = ssh.Dial("tcp", net.JoinHostPort(host, "22"), config)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server %s: %w", host, err)
	}

	d.connected = true
	log.Info().
		Str("host", host).
		Str("user", user).
		Msg("Successfully connected to SSH server")

	return nil
}

// Disconnect closes the SSH connection
func (d *SSHDeployer) Disconnect() error {
	if d.client != nil {
		err := d.client.Close()
		d.connected = false
		d.client = nil
		return err
	}
	return nil
}

// DeployBytes uploads an in-memory file via SCP under the given filename
func (d *SSHDeployer) DeployBytes(data []byte, filename string) error {
	if !d.connected {
		if err := d.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
	}

	_, _, remotePath, err := d.parseDeployURL()
	if err != nil {
		return fmt.Errorf("failed to parse deploy URL: %w", err)
	}

	session, err := d.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	remoteFilePath := filepath.Join(remotePath, filename)
	scpCmd := fmt.Sprintf("scp -t %s", remoteFilePath)

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	if err := session.Start(scpCmd); err != nil {
		return fmt.Errorf("failed to start SCP session: %w", err)
	}

	header := fmt.Sprintf("C0644 %d %s\n", len(data), filename)
	if _, err := stdin.Write([]byte(header)); err != nil {
		return fmt.Errorf("failed to write SCP header: %w", err)
	}

	if _, err := bytes.NewReader(data).WriteTo(stdin); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	if _, err := stdin.Write([]byte{0}); err != nil {
		return fmt.Errorf("failed to write SCP end marker: %w", err)
	}

	stdin.Close()
	if err := session.Wait(); err != nil {
		return fmt.Errorf("SCP session failed: %w", err)
	}

	log.Info().
		Str("remote_path", remoteFilePath).
		Int("size", len(data)).
		Msg("Successfully deployed file via SCP")

	return nil
}

// DeployFile uploads a local file via SCP
func (d *SSHDeployer) DeployFile(localPath, filename string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read local file %s: %w", localPath, err)
	}
	return d.DeployBytes(data, filename)
}
