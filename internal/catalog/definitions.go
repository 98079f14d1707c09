package catalog

import "github.com/capdesc/go-capdesc/internal/captypes"

// profileDefinitions defines command-name risk profiles using the builder
// pattern with explicit risk factor separation. A name match against any
// non-zero factor emits one evidence item per factor.
var profileDefinitions = []ProfileDef{
	// Privilege escalation commands
	NewProfile("sudo", "su", "doas").
		PrivilegeRisk(0.95, 0.95, "Allows execution with elevated privileges, can compromise entire system").
		Build(),

	// Destructive operations, graded by blast radius
	NewProfile("rm", "unlink").
		DestructionRisk(0.9, 0.95, "Can permanently delete files and directories").
		Build(),
	NewProfile("shred").
		DestructionRisk(0.9, 0.95, "Overwrites file contents before deletion, loss is unrecoverable").
		Build(),
	NewProfile("dd").
		DestructionRisk(0.95, 0.95, "Direct disk operations can overwrite any data, bypassing filesystem safety").
		Build(),
	NewProfile("mkfs", "mkfs.ext4", "mkfs.xfs", "mkfs.btrfs").
		DestructionRisk(1.0, 0.95, "Creates a new filesystem, destroying all existing data").
		SystemModRisk(0.8, 0.9, "Alters filesystem layout of the host").
		Build(),
	NewProfile("fdisk", "parted", "sfdisk").
		DestructionRisk(1.0, 0.95, "Disk partitioning can destroy partition tables and render systems unbootable").
		SystemModRisk(0.85, 0.9, "Changes low-level disk layout").
		Build(),

	// Permission and ownership changes
	NewProfile("chmod").
		FileWriteRisk(0.7, 0.9, "Changes file permissions affecting security boundaries").
		Build(),
	NewProfile("chown", "chgrp").
		FileWriteRisk(0.8, 0.9, "Changes file ownership affecting access control").
		PrivilegeRisk(0.6, 0.8, "Often requires elevated privileges").
		Build(),

	// System modification commands
	NewProfile("systemctl", "service").
		SystemModRisk(0.8, 0.9, "Can modify system services and configuration").
		Build(),
	NewProfile("mount", "umount").
		SystemModRisk(0.85, 0.9, "Changes system filesystem layout, can mount with dangerous options").
		Build(),
	NewProfile("crontab").
		SystemModRisk(0.6, 0.85, "Schedules persistent command execution").
		Build(),

	// Kernel interaction
	NewProfile("insmod", "rmmod", "modprobe").
		KernelRisk(0.9, 0.95, "Loads or removes kernel modules, full system compromise possible").
		PrivilegeRisk(0.9, 0.9, "Kernel module operations require root").
		Build(),
	NewProfile("sysctl").
		KernelRisk(0.7, 0.9, "Modifies kernel parameters at runtime").
		Build(),

	// Network commands
	NewProfile("curl", "wget").
		NetworkRisk(0.6, 0.9, "Always performs network operations, can download arbitrary content").
		Build(),
	NewProfile("nc", "netcat", "telnet").
		NetworkRisk(0.6, 0.9, "Establishes arbitrary network connections").
		Build(),
	NewProfile("ssh", "scp", "sftp").
		NetworkRisk(0.55, 0.9, "Remote operations via network").
		Build(),
	NewProfile("rsync").
		NetworkRisk(0.5, 0.85, "Network operations when using remote sources or destinations").
		FileWriteRisk(0.5, 0.85, "Can overwrite or delete destination trees").
		Build(),

	// Data movement with overwrite potential
	NewProfile("cp").
		FileWriteRisk(0.4, 0.85, "Copies files but can overwrite existing data").
		Build(),
	NewProfile("mv").
		FileWriteRisk(0.5, 0.85, "Moves files with potential for data loss at the destination").
		Build(),
	NewProfile("tar", "zip", "unzip", "gzip", "gunzip").
		FileWriteRisk(0.35, 0.8, "Creates or extracts archives, can overwrite files on extraction").
		Build(),

	// Read-only commands
	NewProfile("ls", "cat", "head", "tail", "less", "more", "stat", "file", "wc", "grep", "find", "du", "df").
		FileReadRisk(0.05, 0.8, "Reads or lists filesystem contents without modification").
		Build(),
	NewProfile("ps", "top", "uptime", "whoami", "id", "uname", "date", "env", "printenv", "echo").
		FileReadRisk(0.02, 0.8, "Reports process or environment state without modification").
		Build(),
}

// factorKeywords maps documentation phrases to factor-specific evidence.
// Overlaps with name profiles are expected; detections contribute independently.
var factorKeywords = []KeywordEntry{
	// Destructive capability signals
	{"destroy", captypes.FactorDestructive, 0.95, 0.9, "Command can cause permanent, irreversible data loss"},
	{"irreversible", captypes.FactorDestructive, 0.95, 0.9, "Documentation states the operation cannot be reversed"},
	{"cannot be undone", captypes.FactorDestructive, 0.95, 0.9, "Documentation states the operation cannot be undone"},
	{"delete permanently", captypes.FactorDestructive, 0.95, 0.9, "Documentation states deletion is permanent"},
	{"wipe", captypes.FactorDestructive, 0.85, 0.85, "Command can wipe stored data"},
	{"format", captypes.FactorDestructive, 0.85, 0.85, "Command can format storage, destroying contents"},
	{"erase", captypes.FactorDestructive, 0.8, 0.85, "Command can erase stored data"},
	{"purge", captypes.FactorDestructive, 0.8, 0.85, "Command can purge stored data"},
	{"delete", captypes.FactorDestructive, 0.75, 0.8, "Command can delete data"},
	{"remove", captypes.FactorDestructive, 0.7, 0.8, "Command can remove files or directories"},
	{"recursively", captypes.FactorDestructive, 0.75, 0.85, "Recursive operation can affect entire directory trees"},
	{"overwrite", captypes.FactorDestructive, 0.6, 0.8, "Command can overwrite existing data"},
	{"truncate", captypes.FactorDestructive, 0.6, 0.8, "Command can truncate existing data"},

	// Network operation signals
	{"upload", captypes.FactorNetwork, 0.6, 0.8, "Command can transmit data to remote hosts"},
	{"download", captypes.FactorNetwork, 0.4, 0.8, "Command can retrieve data from remote hosts"},
	{"remote host", captypes.FactorNetwork, 0.45, 0.8, "Command operates against remote hosts"},
	{"listen", captypes.FactorNetwork, 0.45, 0.75, "Command can accept inbound network connections"},
	{"socket", captypes.FactorNetwork, 0.4, 0.75, "Command operates on network sockets"},
	{"http", captypes.FactorNetwork, 0.35, 0.7, "Documentation references a network protocol"},
	{"ftp", captypes.FactorNetwork, 0.35, 0.7, "Documentation references a network protocol"},
	{"url", captypes.FactorNetwork, 0.35, 0.7, "Command accepts network addresses"},

	// File operation signals
	{"write", captypes.FactorFileWrite, 0.5, 0.75, "Command can write file contents"},
	{"modify", captypes.FactorFileWrite, 0.6, 0.75, "Command can modify existing files"},
	{"append", captypes.FactorFileWrite, 0.4, 0.75, "Command can append to existing files"},
	{"create", captypes.FactorFileWrite, 0.3, 0.7, "Command can create new files"},
	{"rename", captypes.FactorFileWrite, 0.4, 0.75, "Command can rename files"},
	{"read", captypes.FactorFileRead, 0.1, 0.6, "Command reads file contents"},
	{"list", captypes.FactorFileRead, 0.05, 0.6, "Command lists filesystem entries"},
	{"display", captypes.FactorFileRead, 0.05, 0.6, "Command displays contents without modification"},
	{"print", captypes.FactorFileRead, 0.05, 0.6, "Command prints contents without modification"},

	// System and kernel signals
	{"kernel module", captypes.FactorKernel, 0.9, 0.9, "Command interacts with kernel modules"},
	{"kernel", captypes.FactorKernel, 0.8, 0.8, "Command interacts with the kernel"},
	{"device", captypes.FactorKernel, 0.7, 0.75, "Command interacts with hardware devices"},
	{"partition", captypes.FactorSystemModification, 0.85, 0.85, "Command alters disk partitioning"},
	{"mount", captypes.FactorSystemModification, 0.8, 0.8, "Command alters filesystem mounts"},
	{"system service", captypes.FactorSystemModification, 0.8, 0.85, "Command controls system services"},
	{"daemon", captypes.FactorSystemModification, 0.6, 0.75, "Command controls long-running system processes"},
	{"boot", captypes.FactorSystemModification, 0.7, 0.75, "Command affects the boot process"},
	{"system configuration", captypes.FactorSystemModification, 0.6, 0.8, "Command changes system configuration"},
}

// privilegeIndicators detect privilege requirements stated in documentation.
// Contributions here feed the privilege score, not the overall risk score alone.
var privilegeIndicators = []KeywordEntry{
	{"must be run as root", captypes.FactorPrivilege, 0.9, 0.95, "Explicit statement that command requires root privileges"},
	{"requires root privileges", captypes.FactorPrivilege, 0.9, 0.95, "Explicit statement that command requires root privileges"},
	{"root access required", captypes.FactorPrivilege, 0.9, 0.95, "Explicit statement that command requires root privileges"},
	{"superuser only", captypes.FactorPrivilege, 0.9, 0.95, "Explicit statement that command is superuser-only"},
	{"run as root", captypes.FactorPrivilege, 0.85, 0.9, "Documentation instructs running as root"},
	{"requires sudo", captypes.FactorPrivilege, 0.7, 0.85, "Documentation suggests elevated privileges are required"},
	{"may require sudo", captypes.FactorPrivilege, 0.7, 0.85, "Documentation suggests elevated privileges may be required"},
	{"elevated privileges", captypes.FactorPrivilege, 0.7, 0.85, "Documentation references elevated privileges"},
	{"administrative privileges", captypes.FactorPrivilege, 0.7, 0.85, "Documentation references administrative privileges"},
	{"superuser privileges", captypes.FactorPrivilege, 0.7, 0.85, "Documentation references superuser privileges"},
	{"system configuration", captypes.FactorPrivilege, 0.6, 0.8, "Command operates at system level, likely requiring privileges"},
	{"kernel modules", captypes.FactorPrivilege, 0.6, 0.8, "Command operates at system level, likely requiring privileges"},
	{"hardware control", captypes.FactorPrivilege, 0.6, 0.8, "Command operates at system level, likely requiring privileges"},
}

// genericRiskKeywords are weak, high-recall signals scanned across the whole
// document. They never set capability bits; they only shade the score.
var genericRiskKeywords = []KeywordEntry{
	{"destroy", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data loss"},
	{"erase", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data loss"},
	{"wipe", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data loss"},
	{"overwrite", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data modification"},
	{"replace", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data modification"},
	{"alter", captypes.FactorKeyword, 0.5, 0.7, "High-risk keyword indicates potential for data modification"},
}

// dangerousOptionPatterns flag options documented in the text whose presence
// signals risky operating modes.
var dangerousOptionPatterns = []OptionPattern{
	{"--no-preserve-root", 0.9, 0.95, "Disables protection of the root directory"},
	{"--force", 0.7, 0.8, "Force operation, bypassing safety checks"},
	{"-f", 0.7, 0.8, "Force operation, bypassing safety checks"},
	{"--recursive", 0.7, 0.8, "Recursive operation affecting multiple files or directories"},
	{"-r", 0.7, 0.8, "Recursive operation affecting multiple files or directories"},
	{"-R", 0.7, 0.8, "Recursive operation affecting multiple files or directories"},
	{"--delete", 0.75, 0.85, "Deletes destination entries not present at the source"},
}

// securityNoteMarkers flag documentation lines carrying explicit warnings.
var securityNoteMarkers = []SecurityNoteMarker{
	{"dangerous", 0.8},
	{"caution", 0.8},
	{"warning", 0.8},
	{"careful", 0.6},
	{"security", 0.6},
	{"risk", 0.6},
}

// dangerousExamplePatterns flag risky constructs inside usage examples.
var dangerousExamplePatterns = []ExamplePattern{
	{"rm -rf", 0.85, 0.95, "Usage example demonstrates recursive forced removal"},
	{"dd if=", 0.8, 0.9, "Usage example demonstrates low-level disk operation"},
	{"/dev/", 0.8, 0.9, "Usage example operates directly on device nodes"},
	{"/etc/", 0.6, 0.8, "Usage example operates on system configuration directories"},
	{"/var/", 0.6, 0.8, "Usage example operates on system state directories"},
	{"/usr/", 0.6, 0.8, "Usage example operates on system directories"},
	{"/sys/", 0.6, 0.8, "Usage example operates on kernel interface directories"},
}
